package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meenmo/quantlib/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logger.New(&buf, "warn", "json")
	l.Info("dropped")
	l.Warn("kept", "bond", "LTN")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"bond":"LTN"`)
}

func TestOr(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, custom, logger.Or(custom))
	assert.NotNil(t, logger.Or(nil))
}
