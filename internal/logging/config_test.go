package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig(ProfileRuntime)
	ApplyEnv(&cfg, env(map[string]string{
		EnvLogLevel:     " Debug ",
		EnvLogTimestamp: "false",
		EnvLogNoColor:   "1",
	}))
	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.True(t, cfg.NoColor)
	assert.False(t, cfg.JSON)
}

func TestApplyEnv_IgnoresMalformed(t *testing.T) {
	cfg := DefaultConfig(ProfileTest)
	ApplyEnv(&cfg, env(map[string]string{
		EnvLogLevel:   "loud",
		EnvLogNoColor: "maybe",
	}))
	assert.Equal(t, DefaultConfig(ProfileTest), cfg)
}

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := Build(&buf, Config{Level: zerolog.InfoLevel, JSON: true}, "fintseg")
	l.Debug().Msg("hidden")
	l.Info().Str("type", "HIRMG").Msg("parsed")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"app":"fintseg"`)
	assert.Contains(t, out, `"type":"HIRMG"`)
}

func TestBuild_Console(t *testing.T) {
	var buf bytes.Buffer
	l := Build(&buf, Config{Level: zerolog.DebugLevel, NoColor: true}, "")
	l.Debug().Msg("segment rejected")
	assert.Contains(t, buf.String(), "segment rejected")
}
