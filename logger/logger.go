package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L is the process logger. It writes text to stderr at INFO until InitLogger runs.
var L = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// InitLogger replaces L with a handler at the given level.
// format is "json" or "text" (default).
func InitLogger(levelStr, format string) {
	L = New(os.Stderr, levelStr, format)
	slog.SetDefault(L)
	L.Debug("logger initialized", "level", levelStr, "format", format)
}

// New builds a logger writing to w.
func New(w io.Writer, levelStr, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown strings give INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Or returns l, or L when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return L
}
