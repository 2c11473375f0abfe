package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// FeedLogger logs feed parsing events.
type FeedLogger struct {
	*logrus.Entry
}

// NewFeedLogger creates a new feed logger.
func NewFeedLogger(baseLogger *logrus.Logger) *FeedLogger {
	return &FeedLogger{
		Entry: baseLogger.WithField("component", "feed"),
	}
}

// LogParseFailure logs a record that could not be parsed, with its raw fields.
func (fl *FeedLogger) LogParseFailure(kind string, record map[string][]string, err error) {
	fl.WithFields(logrus.Fields{
		"kind":   kind,
		"record": record,
	}).WithError(err).Warn("Feed record dropped")
}

// LogUnclassified logs a record whose url matches no known page.
func (fl *FeedLogger) LogUnclassified(url string, fieldCount int) {
	fl.WithFields(logrus.Fields{
		"url":         url,
		"field_count": fieldCount,
	}).Debug("Feed record not classified")
}

// LogBatchParsed logs the outcome of a whole batch.
func (fl *FeedLogger) LogBatchParsed(records int, tables map[string]int, failures int, duration time.Duration) {
	fl.WithFields(logrus.Fields{
		"records":     records,
		"tables":      tables,
		"failures":    failures,
		"duration_ms": duration.Milliseconds(),
	}).Info("Feed batch parsed")
}
