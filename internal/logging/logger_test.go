package logging

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			logger, err := New("debug", env)
			require.NoError(t, err)
			assert.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestZapLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, zapLevel(tt.in))
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	logger, err := New("warn", "production")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "j***@example.com", Mask("jane@example.com"))
	assert.Equal(t, "***", Mask("no-at-sign"))
	assert.Equal(t, "***", Mask("@example.com"))
}

func TestMask_MultibyteLocalPart(t *testing.T) {
	masked := Mask("élodie@example.com")
	assert.Equal(t, "é***@example.com", masked)
	assert.True(t, utf8.ValidString(masked))

	assert.Equal(t, "用***@example.cn", Mask("用户@example.cn"))
}

func TestMask_InStructuredField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	zap.New(core).Info("code sent", zap.String("email", Mask("jane@example.com")))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "j***@example.com", logs.All()[0].ContextMap()["email"])
}
