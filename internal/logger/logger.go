// Package logger is the process-wide logging facade: slog underneath,
// printf-style helpers on top so call sites stay one line.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	levelVar slog.LevelVar
	mu       sync.RWMutex
	base     = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &levelVar}))
}

// SetOutput redirects all subsequent log lines, typically to a MultiWriter
// of stdout and the log file.
func SetOutput(w io.Writer) {
	mu.Lock()
	base = newLogger(w)
	mu.Unlock()
}

// SetLevel applies a config-file level name. Unknown names fall back to info.
func SetLevel(level string) {
	levelVar.Set(parseLevel(level))
}

func parseLevel(s string) slog.Level {
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

func active() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debugf(format string, v ...any) {
	active().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	active().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	active().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	active().Error(fmt.Sprintf(format, v...))
}
