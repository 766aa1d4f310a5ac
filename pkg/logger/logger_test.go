package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestSetupWriter_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "production", "info")

	Info("debtor created", "debtor_id", "abc")
	Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "debtor created", entry["msg"])
	assert.Equal(t, "abc", entry["debtor_id"])
}

func TestSetupWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "development", "warn")

	Info("quiet")
	assert.Empty(t, buf.String())

	Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "development", "debug")
	l := NewGormLogger(gormlogger.Warn, 10*time.Millisecond)

	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, nil)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	assert.Contains(t, buf.String(), "Slow SQL")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")

	assert.Equal(t, gormlogger.Silent, l.LogMode(gormlogger.Silent).(*GormLogger).LogLevel)
}
