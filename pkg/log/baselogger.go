package log

import (
	"context"
	"log/slog"
	"os"
)

func (l *BaseLogger) log(level Level, msg string, fields ...Field) {
	if level < l.level {
		return
	}
	attrs := attrsFromFieldSlice(fields)
	l.slogLogger.LogAttrs(context.Background(), toSlogLevel(level), msg, attrs...)
	if level == FatalLevel {
		os.Exit(1)
	}
}

// Debug logs at DebugLevel.
func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }

// Info logs at InfoLevel.
func (l *BaseLogger) Info(msg string, fields ...Field) { l.log(InfoLevel, msg, fields...) }

// Warn logs at WarnLevel.
func (l *BaseLogger) Warn(msg string, fields ...Field) { l.log(WarnLevel, msg, fields...) }

// Error logs at ErrorLevel.
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

// Fatal logs at FatalLevel and terminates the process.
func (l *BaseLogger) Fatal(msg string, fields ...Field) { l.log(FatalLevel, msg, fields...) }

// Debugf logs a printf-style message at DebugLevel.
func (l *BaseLogger) Debugf(msg string, args ...interface{}) { l.logf(DebugLevel, msg, args...) }

// Infof logs a printf-style message at InfoLevel.
func (l *BaseLogger) Infof(msg string, args ...interface{}) { l.logf(InfoLevel, msg, args...) }

// Warnf logs a printf-style message at WarnLevel.
func (l *BaseLogger) Warnf(msg string, args ...interface{}) { l.logf(WarnLevel, msg, args...) }

// Errorf logs a printf-style message at ErrorLevel.
func (l *BaseLogger) Errorf(msg string, args ...interface{}) { l.logf(ErrorLevel, msg, args...) }

// Fatalf logs a printf-style message at FatalLevel and terminates the process.
func (l *BaseLogger) Fatalf(msg string, args ...interface{}) { l.logf(FatalLevel, msg, args...) }

func (l *BaseLogger) logf(level Level, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	attrs := argsToAttrs(args)
	l.slogLogger.LogAttrs(context.Background(), toSlogLevel(level), msg, attrs...)
	if level == FatalLevel {
		os.Exit(1)
	}
}

// WithField returns a Logger with a single additional field.
func (l *BaseLogger) WithField(key string, value interface{}) Logger {
	return l.With(Field{Key: key, Value: value})
}

// WithFields returns a Logger with the given fields merged in.
func (l *BaseLogger) WithFields(fields Fields) Logger {
	nl := l.clone()
	nl.fields = mergeFields(l.fields, fields)
	nl.slogLogger = slog.New(l.slogLogger.Handler().WithAttrs(attrsFromMap(fields)))
	return nl
}

// WithError returns a Logger with an "error" field set.
func (l *BaseLogger) WithError(err error) Logger {
	return l.With(Err(err))
}

// With returns a Logger with the given fields merged in.
func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	nl := l.clone()
	nl.fields = mergeFields(l.fields, fieldsToMap(fields))
	nl.slogLogger = slog.New(l.slogLogger.Handler().WithAttrs(attrsFromFieldSlice(fields)))
	return nl
}

// WithContext returns a Logger enriched with values extracted from ctx.
func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	extracted := ContextExtractor(ctx)
	if len(extracted) == 0 {
		return l
	}
	return l.WithFields(extracted)
}

// WithComponent tags the Logger with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum level this Logger and its handler emit at.
func (l *BaseLogger) SetLevel(level Level) { l.level = level }

// GetLevel returns the current minimum level.
func (l *BaseLogger) GetLevel() Level { return l.level }

func (l *BaseLogger) clone() *BaseLogger {
	nl := *l
	return &nl
}
