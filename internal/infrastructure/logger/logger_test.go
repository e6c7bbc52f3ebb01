package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	l, err := New(&Config{Level: "info", Format: "json", Output: logFile})
	require.NoError(t, err)

	l.Info("order approved")
	l.Debug("should be filtered")
	require.NoError(t, Sync(l))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "order approved", entry["msg"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_UnwritableFileOutput(t *testing.T) {
	_, err := New(&Config{Level: "info", Format: "json", Output: t.TempDir()})
	assert.Error(t, err)
}

func TestNew_StdStreams(t *testing.T) {
	for _, output := range []string{"stdout", "stderr", ""} {
		l, err := New(&Config{Level: "info", Format: "console", Output: output})
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for input, want := range cases {
		assert.Equal(t, want, levelFor(input), "level %q", input)
	}
}

func TestNamed(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "named.log")

	l, err := New(&Config{Level: "info", Format: "json", Output: logFile})
	require.NoError(t, err)

	Named(l, "events").Info("subscribed")
	require.NoError(t, Sync(l))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "events", entry["logger"])
}
