package log

import (
	"log"
	"strings"
)

// stdWriter adapts a Logger to io.Writer for use with the standard log package.
type stdWriter struct {
	logger Logger
	level  Level
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	switch w.level {
	case DebugLevel:
		w.logger.Debug(msg)
	case WarnLevel:
		w.logger.Warn(msg)
	case ErrorLevel:
		w.logger.Error(msg)
	default:
		w.logger.Info(msg)
	}
	return len(p), nil
}

// ToStdLogger returns a *log.Logger that writes through the given Logger at
// the given level, for interop with libraries that require a stdlib logger
// (e.g. Pebble's LoggerAndTracer).
func ToStdLogger(logger Logger, level Level) *log.Logger {
	return log.New(stdWriter{logger: logger, level: level}, "", 0)
}

// RedirectStdLog points the standard library's default logger at the given
// Logger at InfoLevel, so third-party packages that log via log.Printf are
// captured by our structured pipeline.
func RedirectStdLog(logger Logger) {
	log.SetFlags(0)
	log.SetOutput(stdWriter{logger: logger, level: InfoLevel})
}
