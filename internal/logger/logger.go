// internal/logger/logger.go
package logger

import (
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Debug   bool
	Color   bool
	Console io.Writer // defaults to os.Stdout

	// File sink; empty LogFile disables it.
	LogFile    string
	MaxSize    int // megabytes
	MaxAge     int // days
	MaxBackups int
	Compress   bool
}

// DefaultOptions returns console-only options.
func DefaultOptions() Options {
	return Options{
		Color:      true,
		Console:    os.Stdout,
		MaxSize:    20,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}

// New builds a logger that writes pretty lines to the console and, if LogFile is set,
// JSON lines to a rotated file.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	cores := []zapcore.Core{
		zapcore.NewCore(PrettyEncoder(opts.Color), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	if opts.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}

		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// WithRun tags every entry of a run with a fresh correlation id.
func WithRun(l *zap.Logger) (*zap.Logger, string) {
	id := uuid.New().String()
	return l.With(zap.String("run_id", id)), id
}

// Sync flushes l, ignoring the errors terminals return for stdout/stderr.
func Sync(l *zap.Logger) error {
	err := l.Sync()
	if err != nil && (err.Error() == "sync /dev/stdout: invalid argument" ||
		err.Error() == "sync /dev/stderr: inappropriate ioctl for device" ||
		err.Error() == "sync /dev/stdout: inappropriate ioctl for device") {
		return nil
	}
	return err
}
