package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrUnknownBetType     = errors.New("unknown bet type")
	ErrInvalidCombination = errors.New("invalid bracket combination")
	ErrAlreadyVoted       = errors.New("race already voted")
	ErrNotVoted           = errors.New("race not voted")
	ErrAlreadySettled     = errors.New("race already settled")
	ErrSettleBeforeVote   = errors.New("settlement time precedes vote time")
	ErrForeignRace        = errors.New("row belongs to another race")
)
