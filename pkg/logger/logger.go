// Package logger builds the structured zap logger shared by the service.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Name        string
	Level       string
	Development bool
	// FilePath enables a rotating JSON file sink in addition to stdout.
	FilePath string
}

// New creates a zap logger writing to stdout and, when FilePath is set,
// to a size-rotated file.
func New(opts Options) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	level := zap.NewAtomicLevelAt(ParseLevel(opts.Level))

	stdoutEncoder := zapcore.NewJSONEncoder(encoderConfig)
	if opts.Development {
		stdoutEncoder = zapcore.NewConsoleEncoder(encoderConfig)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.FilePath != "" {
		hook := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    128, // MB
			MaxAge:     30,  // days
			MaxBackups: 30,
			Compress:   false,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(hook),
			level,
		))
	}

	zapOpts := []zap.Option{zap.AddCaller()}
	if opts.Development {
		zapOpts = append(zapOpts, zap.Development())
	}
	if opts.Name != "" {
		zapOpts = append(zapOpts, zap.Fields(zap.String("app", opts.Name)))
	}

	return zap.New(zapcore.NewTee(cores...), zapOpts...)
}

// ParseLevel maps a textual level to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "d", "debug":
		return zapcore.DebugLevel
	case "w", "warn", "warning":
		return zapcore.WarnLevel
	case "e", "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
