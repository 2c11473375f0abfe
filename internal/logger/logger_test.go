package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		environment string
		wantLevel   logrus.Level
		wantJSON    bool
	}{
		{name: "debug text", level: "debug", environment: "development", wantLevel: logrus.DebugLevel},
		{name: "production json", level: "warn", environment: "production", wantLevel: logrus.WarnLevel, wantJSON: true},
		{name: "invalid level falls back to info", level: "loud", environment: "development", wantLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewLogger(tt.level, tt.environment)
			assert.Equal(t, tt.wantLevel, log.GetLevel())
			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestFeedLoggerParseFailure(t *testing.T) {
	log, buf := setupTestLogger()
	feedLogger := NewFeedLogger(log)

	feedLogger.LogParseFailure("payoff", map[string][]string{
		"url":      {"https://www.boatrace.jp/owpc/pc/race/raceresult?rno=1&jcd=01&hd=20200101#payoff"},
		"bet_type":  {"?"},
	}, errors.New("unknown token"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "feed", logEntry["component"])
	assert.Equal(t, "payoff", logEntry["kind"])
	assert.Equal(t, "unknown token", logEntry["error"])
	assert.Equal(t, "warning", logEntry["level"])
	assert.NotNil(t, logEntry["record"])
}

func TestFeedLoggerUnclassified(t *testing.T) {
	log, buf := setupTestLogger()
	feedLogger := NewFeedLogger(log)

	feedLogger.LogUnclassified("https://example.com/", 3)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "https://example.com/", logEntry["url"])
	assert.Equal(t, float64(3), logEntry["field_count"])
}

func TestFeedLoggerBatchParsed(t *testing.T) {
	log, buf := setupTestLogger()
	feedLogger := NewFeedLogger(log)

	feedLogger.LogBatchParsed(12, map[string]int{"odds": 10}, 2, 150*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(12), logEntry["records"])
	assert.Equal(t, float64(2), logEntry["failures"])
	assert.Equal(t, float64(150), logEntry["duration_ms"])
}

func TestAuditLoggerVote(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)
	at := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)

	auditLogger.LogVote("20200101_01_1", 120, 4, 4, at)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "20200101_01_1", logEntry["race_id"])
	assert.Equal(t, float64(4), logEntry["vote_amount"])
	assert.Equal(t, float64(at.Unix()), logEntry["timestamp"])
}

func TestAuditLoggerSettlement(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogSettlement("20200101_01_1", "settled", 2, decimal.RequireFromString("14.5"), 1, time.Now())

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "settled", logEntry["outcome"])
	assert.Equal(t, "14.5", logEntry["payoff_amount"])
	assert.Equal(t, float64(1), logEntry["hits"])
}

func TestAuditLoggerDeferred(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogDeferred("20200101_01_1", "pending")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pending", logEntry["outcome"])
	assert.Equal(t, "Settlement deferred", logEntry["msg"])
}
