// Package logger provides a structured logging facility using zap logger.
// It offers context-aware logging, a console sink whose encoding follows the
// environment, and an optional file sink with its own level.
package logger

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DevelopmentEnvironment logs human-readable console output.
	DevelopmentEnvironment = "development"

	// ProductionEnvironment logs JSON.
	ProductionEnvironment = "production"
)

// Options configures Setup.
type Options struct {
	// Environment selects the console encoding ("development" or "production").
	Environment string
	// Level is the minimum level written to the console. Empty means debug in
	// development and info in production.
	Level string
	// File, when set, is a path that receives a JSON copy of the logs.
	File string
	// FileLevel is the minimum level written to File. Empty means info.
	FileLevel string
}

// defaultLogger is the package-level logger instance used when no logger is found in context.
var defaultLogger = zap.NewNop() //nolint: gochecknoglobals

// logFile is the file sink opened by the last successful Setup, if any, and
// consoleLogger is the default logger without it.
var (
	logFile       *os.File    //nolint: gochecknoglobals
	consoleLogger *zap.Logger //nolint: gochecknoglobals
)

// Setup initializes the default logger. It returns an error when a level
// cannot be parsed or the log file cannot be opened; the previous default
// logger is kept in that case. A log file opened by an earlier Setup is
// closed once the new logger is installed.
func Setup(opts Options) error {
	consoleLevel, err := parseLevel(opts.Level, opts.Environment == ProductionEnvironment)
	if err != nil {
		return err
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if opts.Environment == ProductionEnvironment {
		consoleEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), consoleLevel),
	}

	var f *os.File
	if opts.File != "" {
		fileLevel, err := parseLevel(opts.FileLevel, true)
		if err != nil {
			return err
		}

		f, err = os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint: gosec
		if err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.Lock(f),
			fileLevel,
		))
	}

	defaultLogger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	consoleLogger = zap.New(cores[0], zap.AddCaller(), zap.AddCallerSkip(1))

	previous := logFile
	logFile = f
	if previous != nil {
		_ = previous.Close()
	}

	return nil
}

// Close flushes the log file opened by Setup and closes it. The default
// logger falls back to the console sink. Stderr is not synced: fsync fails
// on pipes and terminals.
func Close() error {
	if logFile == nil {
		return nil
	}

	f := logFile
	logFile = nil
	defaultLogger = consoleLogger
	if err := f.Sync(); err != nil {
		_ = f.Close()

		return fmt.Errorf("could not sync log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close log file: %w", err)
	}

	return nil
}

func parseLevel(level string, production bool) (zap.AtomicLevel, error) {
	if level == "" {
		if production {
			return zap.NewAtomicLevelAt(zap.InfoLevel), nil
		}

		return zap.NewAtomicLevelAt(zap.DebugLevel), nil
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("could not parse log level %q: %w", level, err)
	}

	return lvl, nil
}

type key struct{}

// Get retrieves a logger from the provided context.
// If no logger is found in the context, it returns the default logger.
func Get(ctx context.Context) *zap.Logger {
	if logger, _ := ctx.Value(key{}).(*zap.Logger); logger != nil {
		return logger
	}

	return defaultLogger
}

// WithLogger creates a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, logger)
}

// WithFields creates a new context with a logger that includes the specified fields.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}

// IsDebug checks if the logger in the context is enabled at debug level.
func IsDebug(ctx context.Context) bool {
	return Get(ctx).Core().Enabled(zap.DebugLevel)
}

// Debug logs a message at debug level with the given fields.
func Debug(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Debug(msg, fields...)
}

// Info logs a message at info level with the given fields.
func Info(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Info(msg, fields...)
}

// Warn logs a message at warn level with the given fields.
func Warn(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Warn(msg, fields...)
}

// Error logs a message at error level with the given fields.
func Error(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Error(msg, fields...)
}

// Fatal logs a message at fatal level with the given fields.
func Fatal(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Fatal(msg, fields...)
}
