package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json", Output: &buf})

	log.Info("catalog loaded", "services", 3)
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "catalog loaded")
	assert.Contains(t, out, "services")
	assert.NotContains(t, out, "hidden")
}

func TestLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "DEBUG", Output: &buf})

	log.Debug("cache miss", "key", "catalog")

	assert.Contains(t, buf.String(), "cache miss")
}

func TestLogger_WithKeepsFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json", Output: &buf}).With("component", "calc")

	log.Warn("degraded")

	assert.Contains(t, buf.String(), "component")
	assert.Contains(t, buf.String(), "calc")
}

func TestParseLevel_Fallback(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("garbage"))
	assert.Equal(t, parseLevel("info"), parseLevel(""))
}
