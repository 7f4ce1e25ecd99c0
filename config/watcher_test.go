package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "implgen.toml")
	writeConfigFile(t, path, "[generator]\nbinary = \"impl\"\n")

	watcher, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer watcher.Stop()
	watcher.debouncePeriod = 50 * time.Millisecond

	reloaded := make(chan *Config, 1)
	watcher.OnReload(func(cfg *Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})
	watcher.Start()

	writeConfigFile(t, path, "[generator]\nbinary = \"custom-impl\"\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "custom-impl", cfg.Generator.Binary)
		assert.Equal(t, "r", cfg.Generator.FallbackReceiverLetter, "unset keys fall through to defaults")
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestConfigWatcherMissingFile(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
