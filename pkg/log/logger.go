package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// SetupLogger function setup logger.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			case slog.SourceKey:
				attr = slog.Attr{
					Key:   "logging.googleapis.com/sourceLocation",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// Debug implements Logger.Debug.
func (s *slogLogger) Debug(msg string, fields ...any) { s.logger.Debug(msg, fields...) }

// Info implements Logger.Info.
func (s *slogLogger) Info(msg string, fields ...any) { s.logger.Info(msg, fields...) }

// Warn implements Logger.Warn.
func (s *slogLogger) Warn(msg string, fields ...any) { s.logger.Warn(msg, fields...) }

// Error implements Logger.Error.
func (s *slogLogger) Error(msg string, fields ...any) { s.logger.Error(msg, fields...) }

// With implements Logger.With.
func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: s.logger.With(fields...), level: s.level}
}

// Enabled implements Logger.Enabled.
func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger.Enabled(ctx, slog.Level(level))
}

// defaultProvider is the package-level LoggerProvider backed by log/slog.
type defaultProvider struct {
	mu     sync.Mutex
	level  *slog.LevelVar
	logger *slogLogger
}

var provider = newDefaultProvider()

func newDefaultProvider() *defaultProvider {
	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return &defaultProvider{
		level:  level,
		logger: &slogLogger{logger: slog.New(handler), level: level},
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *defaultProvider) GetLogger() Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *defaultProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *defaultProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level.Set(slog.Level(level))
}

// GetLogger returns the default logger instance.
func GetLogger() Logger {
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with the given component name.
func GetLoggerWithName(name string) Logger {
	return provider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the default logger.
func SetLevel(level Level) {
	provider.SetLevel(level)
}
