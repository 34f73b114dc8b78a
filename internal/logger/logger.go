package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how the application logger is built
type Options struct {
	Level   string // debug, info, warn, error (default info)
	Format  string // json or console (default json)
	File    string // optional rotating log file, in addition to stderr
	Service string
}

// New builds the application logger.
// A desktop install usually sets File so that logs survive the session.
func New(opts Options) (*zap.Logger, error) {
	level := parseLevel(opts.Level)

	var encCfg zapcore.EncoderConfig
	if opts.Format == "console" {
		encCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	var encoder zapcore.Encoder
	if opts.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		// files always get JSON so they can be shipped
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.TimeKey = "timestamp"
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(rotator), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	if opts.Service != "" {
		log = log.With(zap.String("service_name", opts.Service))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		log = log.With(zap.String("hostname", hostname))
	}

	return log, nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
