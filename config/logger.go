package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the application logger: colored console output in
// development, JSON everywhere else.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.Logger.Encoding != "" {
		zcfg.Encoding = cfg.Logger.Encoding
	}
	if lvl, err := zapcore.ParseLevel(cfg.Logger.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return zcfg.Build()
}
