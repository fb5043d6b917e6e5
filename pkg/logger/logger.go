package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. DEVELOPMENT gives a human readable console
// logger at debug level; anything else gives JSON at info level.
func New(level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToUpper(level) {
	case "DEVELOPMENT":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "@timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg.Build(zap.AddCaller())
}
