package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func statement() (string, int64) {
	return `SELECT * FROM "orders" WHERE restaurant_id = 'r1'`, 2
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		elapsed time.Duration
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{"error", "warn", 0, errors.New("relation does not exist"), "SQL error", zapcore.ErrorLevel},
		{"record not found is quiet", "info", 0, gormlogger.ErrRecordNotFound, "", 0},
		{"slow", "warn", time.Second, nil, "Slow SQL", zapcore.WarnLevel},
		{"fast at warn is quiet", "warn", 0, nil, "", 0},
		{"every statement at debug", "debug", 0, nil, "SQL", zapcore.DebugLevel},
		{"silent", "silent", time.Second, errors.New("boom"), "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, 500*time.Millisecond)

			gl.Trace(context.Background(), time.Now().Add(-tt.elapsed), statement, tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.wantMsg, entry.Message)
			assert.Equal(t, tt.wantLvl, entry.Level)
			assert.Equal(t, int64(2), entry.ContextMap()["rows"])
		})
	}
}

func TestGormLogger_UsesRequestLogger(t *testing.T) {
	base, baseLogs := observer.New(zapcore.DebugLevel)
	req, reqLogs := observer.New(zapcore.DebugLevel)

	gl := NewGormLogger(zap.New(base), "info", 0)
	ctx := WithScope(WithContext(context.Background(), zap.New(req)), Scope{RequestID: "req-5"})

	gl.Trace(ctx, time.Now(), statement, nil)

	assert.Zero(t, baseLogs.Len())
	require.Equal(t, 1, reqLogs.Len())
	assert.Equal(t, "req-5", reqLogs.All()[0].ContextMap()["request_id"])
	assert.Equal(t, "gorm", reqLogs.All()[0].LoggerName)
}

func TestGormLogger_LogMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), "error", 0)

	gl.Info(context.Background(), "migrated %d tables", 3)
	assert.Zero(t, logs.Len())

	gl.LogMode(gormlogger.Info).Info(context.Background(), "migrated %d tables", 3)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "migrated 3 tables", logs.All()[0].Message)
}
