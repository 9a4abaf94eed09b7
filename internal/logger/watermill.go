package logger

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

type watermillLogger struct {
	sugar *zap.SugaredLogger
}

// GetWatermillLogger routes watermill router and pubsub logs through zap.
// Watermill's debug and trace output is chatty, both land at debug level.
func (l *Logger) GetWatermillLogger() watermill.LoggerAdapter {
	return &watermillLogger{sugar: l.With("component", "watermill")}
}

func (w *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.sugar.Errorw(msg, append(flatten(fields), "error", err)...)
}

func (w *watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.sugar.Infow(msg, flatten(fields)...)
}

func (w *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.sugar.Debugw(msg, flatten(fields)...)
}

func (w *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.sugar.Debugw(msg, flatten(fields)...)
}

func (w *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{sugar: w.sugar.With(flatten(fields)...)}
}

func flatten(fields watermill.LogFields) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
