package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"day": "Monday"})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	require.NoError(t, SetLevel("info"))

	l := New("scheduler")
	l.Debugf("hidden")
	l.Infow("day scheduled", map[string]any{"day": "Monday", "iterations": 12})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "day scheduled", entry["message"])
	assert.Equal(t, "Monday", entry["day"])
	assert.Equal(t, 12.0, entry["iterations"])
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)
	require.NoError(t, SetLevel("WARN"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	require.NoError(t, SetLevel(""))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Error(t, SetLevel("loud"))
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Infow("ignored", nil)
}
