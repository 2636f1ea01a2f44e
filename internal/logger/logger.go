package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	loggers sync.Map // map[string]*slog.Logger
	levels  sync.Map // map[string]*slog.LevelVar

	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
)

// Logger returns the cached *slog.Logger for subsystem, creating it with the
// level/format resolved from the environment on first use.
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	levelVar := &slog.LevelVar{}
	levelVar.Set(cfg.LevelForSubsystem(subsystem))

	handlerOpts := &slog.HandlerOptions{Level: levelVar}
	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	l := slog.New(handler).With("subsystem", subsystem)
	actual, loaded := loggers.LoadOrStore(subsystem, l)
	if !loaded {
		levels.Store(subsystem, levelVar)
	}
	return actual.(*slog.Logger)
}

// GlobalLogger returns the default logger used outside any specific
// subsystem, e.g. as the fx injection default.
func GlobalLogger() *slog.Logger {
	globalLoggerOnce.Do(func() {
		globalLogger = Logger("broker")
	})
	return globalLogger
}

// SetLevel adjusts a subsystem's level at runtime.
func SetLevel(subsystem string, level slog.Level) {
	if v, ok := levels.Load(subsystem); ok {
		v.(*slog.LevelVar).Set(level)
	}
}

// Discard returns a logger that drops everything, for use in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
