package storage

import (
	"path"
	"strings"
)

const (
	raceListObject = "df_racelist.json.gz"
	raceListCSV    = "df_racelist.csv"
	votePrefix     = "df_vote_"
	voteSuffix     = ".json.gz"
	feedPrefix     = "race_"
	beforeSuffix   = "_before.json"
	afterSuffix    = "_after.json"
)

// Keys lays out object keys under the vote and feed prefixes
type Keys struct {
	VotePrefix     string
	FeedPrefix     string
	PredictionsKey string
}

// RaceList is the ledger object
func (k Keys) RaceList() string {
	return path.Join(k.VotePrefix, raceListObject)
}

// RaceListCSV is the human-readable ledger snapshot
func (k Keys) RaceListCSV() string {
	return path.Join(k.VotePrefix, raceListCSV)
}

// Vote is the vote table of one race
func (k Keys) Vote(raceID string) string {
	return path.Join(k.VotePrefix, votePrefix+raceID+voteSuffix)
}

// VoteTables is the common prefix of every vote table
func (k Keys) VoteTables() string {
	return path.Join(k.VotePrefix, votePrefix)
}

// VoteRaceID extracts the race_id from a vote table key
func (k Keys) VoteRaceID(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, k.VoteTables())
	if !ok {
		return "", false
	}
	return strings.CutSuffix(name, voteSuffix)
}

// BeforeFeed is the feed scraped just before a race: its odds
func (k Keys) BeforeFeed(raceID string) string {
	return path.Join(k.FeedPrefix, feedPrefix+raceID+beforeSuffix)
}

// AfterFeed is the feed scraped after a race: final odds and payoffs
func (k Keys) AfterFeed(raceID string) string {
	return path.Join(k.FeedPrefix, feedPrefix+raceID+afterSuffix)
}

// RaceFeeds is the common prefix of every per-race feed
func (k Keys) RaceFeeds() string {
	return path.Join(k.FeedPrefix, feedPrefix)
}

// FeedRaceID extracts the race_id from a per-race feed key and reports
// whether it is the after-race feed
func (k Keys) FeedRaceID(key string) (raceID string, after bool, ok bool) {
	name, ok := strings.CutPrefix(key, k.RaceFeeds())
	if !ok {
		return "", false, false
	}
	if id, ok := strings.CutSuffix(name, afterSuffix); ok {
		return id, true, id != ""
	}
	id, ok := strings.CutSuffix(name, beforeSuffix)
	return id, false, ok && id != ""
}

// Predictions is the predictions table
func (k Keys) Predictions() string {
	return k.PredictionsKey
}
