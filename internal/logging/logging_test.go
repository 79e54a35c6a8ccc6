package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("dropped")
	log.Warn().Str("path", "/ip/pool").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "/ip/pool", line["path"])
	assert.Equal(t, "rosreconcile", line["app"])
}

func TestNewConsoleFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "loud", NoColor: true}, &buf)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogNoColor, "true")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	assert.Equal(t, Config{Level: "debug", Format: "json", NoColor: true}, cfg)

	t.Setenv(EnvLogLevel, "chatty")
	t.Setenv(EnvLogNoColor, "maybe")
	cfg = DefaultConfig()
	ApplyEnv(&cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.False(t, cfg.NoColor)
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("WARNING"))
	assert.False(t, ValidLevel(""))
}
