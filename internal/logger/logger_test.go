package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	t.Run("accepts known levels", func(t *testing.T) {
		require.NoError(t, Init(Options{Level: "warn", Format: "json"}))
		assert.False(t, Log().Core().Enabled(zapcore.InfoLevel))
		assert.True(t, Log().Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		assert.Error(t, Init(Options{Level: "loud"}))
	})

	t.Run("development logger enables debug", func(t *testing.T) {
		require.NoError(t, InitDevelopment())
		assert.True(t, Log().Core().Enabled(zapcore.DebugLevel))
	})
}

func TestSet_ReplacesGlobals(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))

	S().Infof("stable gesture %s", "fist")
	zap.L().Info("via global")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "stable gesture fist", logs.All()[0].Message)
}
