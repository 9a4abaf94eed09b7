package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTemporalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	tl := l.GetTemporalLogger()
	tl.Info("worker started", "task_queue", "dunning")

	withLogger, ok := tl.(log.WithLogger)
	require.True(t, ok)
	withLogger.With("workflow_id", "wf_1").Error("activity failed", "attempt", 2)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "worker started", entries[0].Message)
	assert.Equal(t, "temporal", entries[0].ContextMap()["component"])
	assert.Equal(t, "dunning", entries[0].ContextMap()["task_queue"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "wf_1", entries[1].ContextMap()["workflow_id"])
	assert.Equal(t, int64(2), entries[1].ContextMap()["attempt"])
}
