package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config declaratively describes how to build a process-wide Logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error", "fatal".
	Level string
	// Format is one of "json" or "text".
	Format string
	// FilePath, when non-empty, adds a file output at this path in addition
	// to the console output.
	FilePath string
	// RedactKeys lists field keys whose values are replaced with
	// "[REDACTED]" before formatting.
	RedactKeys []string
	// SampleInitial and SampleThereafter configure per-message-key
	// sampling: the first SampleInitial occurrences of a (level, message)
	// pair are logged, then every SampleThereafter-th occurrence after
	// that. Zero disables sampling.
	SampleInitial    int
	SampleThereafter int
}

// ParseLevel parses a level name into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// ApplyConfig builds a Logger from a Config.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		formatter = &JSONFormatter{}
	case "text", "":
		formatter = &TextFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	opts := []LoggerOption{WithLevel(level), WithFormatter(formatter), WithOutput(NewConsoleOutput())}
	if cfg.FilePath != "" {
		fo, err := NewFileOutput(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("log: open file output: %w", err)
		}
		opts = append(opts, WithOutput(fo))
	}

	logger := NewLogger(opts...)
	base, ok := logger.(*BaseLogger)
	if !ok {
		return logger, nil
	}
	if handler, ok := base.slogLogger.Handler().(*bridgeHandler); ok {
		nh := handler.withRedactions(cfg.RedactKeys).withSampler(cfg.SampleInitial, cfg.SampleThereafter)
		base.slogLogger = slog.New(nh)
	}
	return base, nil
}
