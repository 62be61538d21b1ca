package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It discards everything until Init runs,
// so packages can log from tests without setup.
var Logger = zap.NewNop()

func Init(environment string) error {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.StacktraceKey = "stacktrace"

	built, err := config.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", "bloodlink")),
	)
	if err != nil {
		return err
	}

	Logger = built
	zap.ReplaceGlobals(Logger)

	return nil
}

// Set swaps the process-wide logger, typically for an observer core in tests.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l
}

func Sync() {
	_ = Logger.Sync()
}

// Named returns a child logger for a component without the wrapper caller skip.
func Named(component string) *zap.Logger {
	return Logger.WithOptions(zap.AddCallerSkip(-1)).Named(component)
}

func WithRequestID(requestID string) *zap.Logger {
	return Logger.WithOptions(zap.AddCallerSkip(-1)).With(zap.String("request_id", requestID))
}

func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}
