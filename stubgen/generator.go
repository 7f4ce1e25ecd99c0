// Package stubgen builds and runs the external stub-generation subprocess.
// The utility has no structured exit protocol: success and failure are
// classified purely from stdout content, and a qualified lookup that misses
// is retried exactly once without the qualifier. No failure crosses this
// package's boundary; every path logs and yields "no text".
package stubgen

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/codetrellis/implgen/errors"
	"github.com/codetrellis/implgen/syntax"
)

// Failure markers the generation utility prints on its first stdout line
// when it cannot resolve the requested interface.
var notFoundMarkers = []string{
	"unrecognized interface:",
	"couldn't find",
}

// Request describes one generation invocation. Built once, never mutated.
type Request struct {
	ReceiverText       string   // source text of the receiver type identifier
	ReceiverTypeParams []string // the receiver's own type parameters, if generic
	InterfaceName      string
	PackageQualifier   string   // optional; "" means unqualified
	TypeParams         []string // the interface's type parameters
	WorkingDir         string   // receiver's enclosing directory
}

// Runner spawns the generation subprocess. The argv is always passed as a
// vector and never interpreted by a shell.
type Runner interface {
	Run(ctx context.Context, dir, binary string, args []string) (stdout, stderr []byte, err error)
}

// Config holds generator configuration
type Config struct {
	Binary                 string
	FallbackReceiverLetter string
	Timeout                time.Duration
	Runner                 Runner // nil selects the exec-backed runner
	Logger                 *zap.SugaredLogger
}

// Generator runs the external stub-generation utility
type Generator struct {
	binary         string
	fallbackLetter string
	timeout        time.Duration
	runner         Runner
	logger         *zap.SugaredLogger
}

// NewGenerator creates a generator from config
func NewGenerator(cfg Config) *Generator {
	binary := cfg.Binary
	if binary == "" {
		binary = "impl"
	}
	fallback := cfg.FallbackReceiverLetter
	if fallback == "" {
		fallback = "r"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runner := cfg.Runner
	if runner == nil {
		runner = execRunner{}
	}
	return &Generator{
		binary:         binary,
		fallbackLetter: fallback,
		timeout:        timeout,
		runner:         runner,
		logger:         cfg.Logger,
	}
}

// Generate produces stub method lines for the request, or nil when nothing
// could be generated. Failures never escape; they are logged and the caller
// treats nil as "nothing to insert".
func (g *Generator) Generate(ctx context.Context, req Request) []string {
	prefix, err := receiverPrefix(req.ReceiverText, g.fallbackLetter)
	if err != nil {
		g.logger.Errorw("stub generation aborted", "error", err)
		return nil
	}

	receiverExpr := fmt.Sprintf("%s *%s", prefix,
		req.ReceiverText+syntax.RenderTypeParams(req.ReceiverTypeParams))
	renderedParams := syntax.RenderTypeParams(req.TypeParams)

	qualified := req.InterfaceName + renderedParams
	if req.PackageQualifier != "" {
		qualified = req.PackageQualifier + "." + qualified
	}

	lines, err := g.invoke(ctx, req.WorkingDir, receiverExpr, qualified)
	if err == nil {
		return lines
	}

	// Single permitted fallback: a qualified lookup the generator did not
	// recognize is retried once with the plain interface name.
	if errors.IsGenerationNotFound(err) && req.PackageQualifier != "" {
		g.logger.Infow("generator did not recognize qualified interface, retrying unqualified",
			"qualified", qualified,
			"interface", req.InterfaceName)

		lines, err = g.invoke(ctx, req.WorkingDir, receiverExpr, req.InterfaceName+renderedParams)
		if err == nil {
			return lines
		}
	}

	g.logger.Errorw("stub generation failed",
		"interface", req.InterfaceName,
		"qualifier", req.PackageQualifier,
		"receiver", req.ReceiverText,
		"error", err)
	return nil
}

// invoke runs the utility once and classifies its stdout
func (g *Generator) invoke(ctx context.Context, dir, receiverExpr, qualified string) ([]string, error) {
	args := []string{"-dir", dir, receiverExpr, qualified}

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debugw("spawning stub generator",
		"command", shellquote.Join(append([]string{g.binary}, args...)...))

	stdout, stderr, runErr := g.runner.Run(runCtx, dir, g.binary, args)
	lines := splitOutputLines(stdout)

	// The not-found markers take precedence over the exit status: the utility
	// reports resolution misses on stdout, not through its exit code.
	if len(lines) > 0 && hasNotFoundMarker(lines[0]) {
		return nil, errors.Wrapf(errors.ErrGenerationNotFound, "%s", lines[0])
	}

	if runErr != nil {
		return nil, errors.Wrapf(errors.ErrGenerationFailed, "%v: %s",
			runErr, strings.TrimSpace(string(stderr)))
	}

	if len(lines) == 0 {
		return nil, errors.Wrap(errors.ErrGenerationFailed, "generator produced no output")
	}

	return lines, nil
}

// receiverPrefix derives the receiver variable name: the lowercase letters of
// the first two characters of the receiver's source text. The result is never
// empty; a prefix with no letters substitutes the configured fallback.
func receiverPrefix(text, fallback string) (string, error) {
	if text == "" {
		return "", errors.ErrMissingReceiverText
	}

	var letters []rune
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToLower(r))
		}
		if len(letters) == 2 {
			break
		}
	}

	if len(letters) == 0 {
		return fallback, nil
	}
	return string(letters), nil
}

// splitOutputLines splits stdout into ordered lines, trimming a single
// trailing empty line left by the utility on some platforms.
func splitOutputLines(stdout []byte) []string {
	if len(stdout) == 0 {
		return nil
	}
	lines := strings.Split(string(stdout), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// hasNotFoundMarker reports whether a first output line signals a
// recoverable resolution miss
func hasNotFoundMarker(line string) bool {
	for _, marker := range notFoundMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
