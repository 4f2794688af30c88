package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option меняет конфигурацию до сборки логгера
type Option func(*zap.Config)

// ToStderr направляет записи в stderr. Нужен CLI, чей stdout занят выводом команд.
func ToStderr() Option {
	return func(c *zap.Config) {
		c.OutputPaths = []string{"stderr"}
	}
}

// New создает логгер уровня level с полем service. Неизвестный уровень
// считается info. На уровне debug вывод цветной консольный, иначе JSON.
func New(level, service string, opts ...Option) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	for _, opt := range opts {
		opt(&cfg)
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if service != "" {
		log = log.Named(service).With(zap.String("service", service))
	}
	return log, nil
}
