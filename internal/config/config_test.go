package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Zero(t, cfg.Grammar.MatchTimeout.Duration)
	assert.NoError(t, cfg.Valid())
}

func TestLoad(t *testing.T) {
	file := writeConfig(t, `
jobs = 8

[log]
level = "debug"
format = "json"

[grammar]
rules = "custom.yaml"
match-timeout = "250ms"

[theme]
"divert.target" = ["bold", "hi-cyan"]
`)

	cfg := NewConfig()
	require.NoError(t, cfg.Load(file))
	assert.Equal(t, 8, cfg.Jobs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "custom.yaml", cfg.Grammar.Rules)
	assert.Equal(t, 250*time.Millisecond, cfg.Grammar.MatchTimeout.Duration)
	assert.Equal(t, []string{"bold", "hi-cyan"}, cfg.Theme["divert.target"])
}

func TestLoadKeepsDefaults(t *testing.T) {
	file := writeConfig(t, "[log]\nlevel = \"info\"\n")

	cfg := NewConfig()
	require.NoError(t, cfg.Load(file))
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, 4, cfg.Jobs)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	file := writeConfig(t, "jobs = 2\ncolour = true\n\n[log]\nlevl = \"info\"\n")

	cfg := NewConfig()
	err := cfg.Load(file)
	require.Error(t, err)

	var verr *ErrConfigValidationFailed
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"colour", "log.levl"}, verr.UndecodedItems)
	assert.Contains(t, err.Error(), "contained invalid configuration options")
	// Known keys are still applied.
	assert.Equal(t, 2, cfg.Jobs)
}

func TestLoadErrors(t *testing.T) {
	cfg := NewConfig()
	err := cfg.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")

	err = cfg.Load(writeConfig(t, "[grammar]\nmatch-timeout = \"soon\"\n"))
	assert.Error(t, err)

	err = cfg.Load(writeConfig(t, "[log]\nlevel = \"loud\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level 'loud'")
}

func TestValid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"Defaults", func(*Config) {}, true},
		{"Upper case level", func(c *Config) { c.Log.Level = "DEBUG" }, true},
		{"Unknown level", func(c *Config) { c.Log.Level = "trace" }, false},
		{"Unknown format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"Negative jobs", func(c *Config) { c.Jobs = -1 }, false},
		{"Zero jobs", func(c *Config) { c.Jobs = 0 }, true},
		{"Negative timeout", func(c *Config) { c.Grammar.MatchTimeout.Duration = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			if tt.valid {
				assert.NoError(t, cfg.Valid())
			} else {
				assert.Error(t, cfg.Valid())
			}
		})
	}
}
