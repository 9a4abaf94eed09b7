package logger

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// temporalLogger lets the temporal SDK log through our zap logger
type temporalLogger struct {
	sugar *zap.SugaredLogger
}

var (
	_ log.Logger     = (*temporalLogger)(nil)
	_ log.WithLogger = (*temporalLogger)(nil)
)

// GetTemporalLogger returns a temporal-compatible logger tagged with the temporal component
func (l *Logger) GetTemporalLogger() log.Logger {
	return &temporalLogger{
		sugar: l.SugaredLogger.Desugar().WithOptions(zap.AddCallerSkip(1)).Sugar().With("component", "temporal"),
	}
}

func (t *temporalLogger) Debug(msg string, keyvals ...interface{}) {
	t.sugar.Debugw(msg, keyvals...)
}

func (t *temporalLogger) Info(msg string, keyvals ...interface{}) {
	t.sugar.Infow(msg, keyvals...)
}

func (t *temporalLogger) Warn(msg string, keyvals ...interface{}) {
	t.sugar.Warnw(msg, keyvals...)
}

func (t *temporalLogger) Error(msg string, keyvals ...interface{}) {
	t.sugar.Errorw(msg, keyvals...)
}

// With carries workflow and activity tags added by the SDK
func (t *temporalLogger) With(keyvals ...interface{}) log.Logger {
	return &temporalLogger{sugar: t.sugar.With(keyvals...)}
}
