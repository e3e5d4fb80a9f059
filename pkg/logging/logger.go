// Package logging is the structured event log for freepare.
//
// Events are JSON lines written through zap. The TUI owns the terminal, so
// the log goes to a file (or stderr in robot mode); with no destination
// configured every call is a no-op.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap SugaredLogger. A nil *Logger is valid and discards
// everything.
type Logger struct {
	sugar  *zap.SugaredLogger
	closer io.Closer
}

// ParseLevel maps FREEPARE_LOG_LEVEL values onto zap levels. enabled is
// false for "none". Unknown values fall back to warn.
func ParseLevel(raw string) (level zapcore.Level, enabled bool) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "none", "off", "0":
		return zapcore.FatalLevel, false
	case "error", "err", "1":
		return zapcore.ErrorLevel, true
	case "warn", "warning", "2":
		return zapcore.WarnLevel, true
	case "info", "3":
		return zapcore.InfoLevel, true
	case "debug", "trace", "4", "5":
		return zapcore.DebugLevel, true
	default:
		return zapcore.WarnLevel, true
	}
}

// New opens a logger writing to path. An empty path returns a no-op
// logger; "stderr" writes to standard error. Files are appended to and
// their directory is created.
func New(path, level string) (*Logger, error) {
	lvl, enabled := ParseLevel(level)
	if path == "" || !enabled {
		return Nop(), nil
	}
	if path == "stderr" {
		return NewWithWriter(os.Stderr, level), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := newCore(zapcore.AddSync(f), lvl)
	l.closer = f
	return l, nil
}

// NewWithWriter builds a logger over an arbitrary writer.
func NewWithWriter(w io.Writer, level string) *Logger {
	lvl, enabled := ParseLevel(level)
	if !enabled {
		return Nop()
	}
	return newCore(zapcore.AddSync(w), lvl)
}

func newCore(ws zapcore.WriteSyncer, lvl zapcore.Level) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zap.NewAtomicLevelAt(lvl))
	return &Logger{sugar: zap.New(core).Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Debugw(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Infow(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Warnw(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Errorw(msg, sanitizeKVs(keysAndValues)...)
}

// With returns a child logger carrying the given fields on every event.
func (l *Logger) With(keysAndValues ...any) *Logger {
	if l == nil || l.sugar == nil {
		return l
	}
	return &Logger{sugar: l.sugar.With(sanitizeKVs(keysAndValues)...), closer: l.closer}
}

// Close flushes buffered events and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.sugar == nil {
		return nil
	}
	_ = l.sugar.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func sanitizeKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		out = append(out, key, sanitizeValue(strings.ToLower(key), kv[i+1]))
	}
	return out
}

func sanitizeValue(key string, val any) any {
	if isRedactKey(key) {
		return "[REDACTED]"
	}
	if s, ok := val.(string); ok && looksLikeJWT(s) {
		return "[REDACTED]"
	}
	return val
}

func isRedactKey(key string) bool {
	for _, k := range []string{"token", "authorization", "cookie", "password", "secret"} {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

func looksLikeJWT(s string) bool {
	s = strings.TrimPrefix(s, "Bearer ")
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}
