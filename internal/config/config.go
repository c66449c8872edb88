// Package config holds the command-line tool's configuration, read from a
// TOML file and overridden by flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
)

const (
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "warn"
	// DefaultLogFormat is the default format of the log.
	DefaultLogFormat = "text"
)

// Config is the tool configuration.
type Config struct {
	Log     Log                 `toml:"log" json:"log"`
	Grammar Grammar             `toml:"grammar" json:"grammar"`
	Jobs    int                 `toml:"jobs" json:"jobs"`
	Theme   map[string][]string `toml:"theme" json:"theme"`
}

// Log is the log section of config.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`
	// Format is "text" or "json".
	Format string `toml:"format" json:"format"`
}

// Grammar is the grammar section of config.
type Grammar struct {
	// Rules is a YAML rules file replacing the built-in ink grammar.
	Rules string `toml:"rules" json:"rules"`
	// MatchTimeout bounds a single pattern evaluation; zero disables it.
	MatchTimeout Duration `toml:"match-timeout" json:"match-timeout"`
}

// Duration is a time.Duration spelled like "250ms" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return errors.Trace(err)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Jobs: 4,
	}
}

// ErrConfigValidationFailed reports unknown keys in a config file.
type ErrConfigValidationFailed struct {
	confFile       string
	UndecodedItems []string
}

func (e *ErrConfigValidationFailed) Error() string {
	return fmt.Sprintf("config file %s contained invalid configuration options: %s",
		e.confFile, strings.Join(e.UndecodedItems, ", "))
}

// Load reads a TOML file on top of the current values. Unknown keys are
// rejected, after the known ones have been applied.
func (c *Config) Load(confFile string) error {
	metaData, err := toml.DecodeFile(confFile, c)
	if err != nil {
		return errors.Annotatef(err, "failed to load config file '%s'", confFile)
	}
	if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
		items := make([]string, 0, len(undecoded))
		for _, item := range undecoded {
			items = append(items, item.String())
		}
		return &ErrConfigValidationFailed{confFile: confFile, UndecodedItems: items}
	}
	return c.Valid()
}

// Valid checks the configuration values.
func (c *Config) Valid() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("invalid log level '%s'", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("invalid log format '%s'", c.Log.Format)
	}
	if c.Jobs < 0 {
		return errors.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.Grammar.MatchTimeout.Duration < 0 {
		return errors.Errorf("match-timeout must not be negative, got %s", c.Grammar.MatchTimeout)
	}
	return nil
}
