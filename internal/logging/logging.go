// Package logging builds the zerolog logger used by the command line tool.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "ROSRECONCILE_LOG_LEVEL"
	EnvLogFormat  = "ROSRECONCILE_LOG_FORMAT"
	EnvLogNoColor = "ROSRECONCILE_LOG_NOCOLOR"
)

// Config selects level and output format.
type Config struct {
	Level   string `yaml:"level" toml:"level"`
	Format  string `yaml:"format" toml:"format"` // console or json
	NoColor bool   `yaml:"no_color" toml:"no_color"`
}

// DefaultConfig logs info and above to a colored console.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console"}
}

// ApplyEnv overrides cfg from the environment. Unparsable values are
// ignored.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		if _, ok := parseLevel(v); ok {
			cfg.Level = v
		}
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogFormat))) {
	case "json":
		cfg.Format = "json"
	case "console", "text":
		cfg.Format = "console"
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

// New builds a logger writing to out (stderr when nil).
func New(cfg Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	level, ok := parseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("app", "rosreconcile").Logger()
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// ValidLevel reports whether raw names a level.
func ValidLevel(raw string) bool {
	_, ok := parseLevel(raw)
	return ok
}
