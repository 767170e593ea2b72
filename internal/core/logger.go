package core

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides a structured logging interface for the application.
type Logger interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Debug(msg string, fields ...any)
	Sync() error
}

// ZapLogger is the zap-backed Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// NewLogger creates a console logger writing to w at the given level.
// Unknown levels fall back to warn so stdout stays a clean transcript.
func NewLogger(level string, w io.Writer) *ZapLogger {
	if w == nil {
		w = os.Stderr
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		parseLevel(level),
	)
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

// NopLogger discards everything.
func NopLogger() *ZapLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// Sugared exposes the underlying logger for packages that take zap directly.
func (l *ZapLogger) Sugared() *zap.SugaredLogger {
	return l.sugar
}

// With returns a logger that adds fields to every entry.
func (l *ZapLogger) With(fields ...any) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.With(fields...)}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

func (l *ZapLogger) Info(msg string, fields ...any) {
	l.sugar.Infow(msg, fields...)
}

func (l *ZapLogger) Warn(msg string, fields ...any) {
	l.sugar.Warnw(msg, fields...)
}

func (l *ZapLogger) Error(msg string, fields ...any) {
	l.sugar.Errorw(msg, fields...)
}

func (l *ZapLogger) Debug(msg string, fields ...any) {
	l.sugar.Debugw(msg, fields...)
}
