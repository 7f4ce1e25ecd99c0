package stubgen

import (
	"bytes"
	"context"
	"os/exec"
)

// execRunner spawns the generation utility with exec, passing arguments as a
// vector so no shell ever interprets them.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
