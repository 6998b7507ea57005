package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BridgeLogger tees logger into the OpenTelemetry log pipeline when logs are exported.
// Otherwise it returns logger unchanged.
func (p *Providers) BridgeLogger(logger *zap.Logger, name string) *zap.Logger {
	if p.Logger == nil {
		return logger
	}
	otelCore := otelzap.NewCore(name, otelzap.WithLoggerProvider(p.Logger))
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otelCore)
	}))
}
