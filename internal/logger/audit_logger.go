// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AuditLogger records every change to the race list ledger.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogVote logs a vote decision, including zero-stake abstentions.
func (al *AuditLogger) LogVote(raceID string, candidates, combinations, voteAmount int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"race_id":      raceID,
		"candidates":   candidates,
		"combinations": combinations,
		"vote_amount":  voteAmount,
		"timestamp":    timestamp.Unix(),
	}).Info("Vote recorded")
}

// LogSettlement logs a race settlement.
func (al *AuditLogger) LogSettlement(raceID, outcome string, voteAmount int, payoffAmount decimal.Decimal, hits int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"race_id":       raceID,
		"outcome":       outcome,
		"vote_amount":   voteAmount,
		"payoff_amount": payoffAmount.String(),
		"hits":          hits,
		"timestamp":     timestamp.Unix(),
	}).Info("Race settled")
}

// LogDeferred logs a settlement attempt that changed nothing.
func (al *AuditLogger) LogDeferred(raceID, outcome string) {
	al.WithFields(logrus.Fields{
		"race_id": raceID,
		"outcome": outcome,
	}).Info("Settlement deferred")
}

// LogRaceListCreated logs a newly built race list.
func (al *AuditLogger) LogRaceListCreated(date string, races int) {
	al.WithFields(logrus.Fields{
		"date":  date,
		"races": races,
	}).Info("Race list created")
}
