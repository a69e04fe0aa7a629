package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	for _, tc := range []struct {
		level string
		dev   bool
		want  zapcore.Level
	}{
		{"debug", true, zapcore.DebugLevel},
		{"info", false, zapcore.InfoLevel},
		{"WARN", false, zapcore.WarnLevel},
		{"error", true, zapcore.ErrorLevel},
	} {
		log, err := New(tc.level, tc.dev)
		require.NoError(t, err, tc.level)
		assert.True(t, log.Core().Enabled(tc.want), tc.level)
		assert.False(t, log.Core().Enabled(tc.want-1), tc.level)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.ErrorContains(t, err, "loud")
}
