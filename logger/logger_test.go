package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestInitWithWriters(t *testing.T) {
	defer func() { Log = zap.NewNop() }()

	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "softweld.log")
	InitWithWriters("warn", DefaultFileConfig(logFile), &console)

	Log.Info("hidden")
	Log.Warn("welded", zap.Int("nodes", 4))
	Sync()

	out := console.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "welded")
	assert.Contains(t, out, "WARN")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"nodes":4`))
}

func TestNopBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Log.Debug("nobody listens")
		Sync()
	})
}
