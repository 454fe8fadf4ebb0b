// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JakeFAU/imgresolver/internal/config"
)

// New builds a zap.Logger configured for development or production. When
// cfg.ErrorFile is set, entries at Error and above are also written there as JSON.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	logger, err := build(cfg.Development)
	if err != nil {
		return nil, err
	}
	if cfg.ErrorFile == "" {
		return logger, nil
	}
	sink, _, err := zap.Open(cfg.ErrorFile)
	if err != nil {
		return nil, fmt.Errorf("open error log %q: %w", cfg.ErrorFile, err)
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	errorCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, zap.ErrorLevel)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, errorCore)
	})), nil
}

func build(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}
