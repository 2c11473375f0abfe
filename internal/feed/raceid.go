package feed

import (
	"regexp"
	"strconv"
	"time"
)

// JST is the timezone of every race time on the official site
var JST = time.FixedZone("JST", 9*60*60)

var (
	raceListURLPattern   = regexp.MustCompile(`https://www\.boatrace\.jp/owpc/pc/race/racelist\?rno=([0-9]+)&jcd=([0-9]{2})&hd=([0-9]{8})`)
	raceResultURLPattern = regexp.MustCompile(`https://www\.boatrace\.jp/owpc/pc/race/raceresult\?rno=([0-9]+)&jcd=([0-9]{2})&hd=([0-9]{8})`)
	oddsURLPattern       = regexp.MustCompile(`https://www\.boatrace\.jp/owpc/pc/race/(oddstf|oddsk|odds2tf|odds3t|odds3f)\?rno=([0-9]+)&jcd=([0-9]{2})&hd=([0-9]{8})(#oddst|#oddsf|#odds2t|#odds2f)?`)
	raceIndexURLPattern  = regexp.MustCompile(`https://www\.boatrace\.jp/owpc/pc/race/raceindex\?jcd=([0-9]{2})&hd=([0-9]{8})`)
)

// RaceKey is the identity of a race as carried in page query parameters
type RaceKey struct {
	Date    string // hd, YYYYMMDD
	PlaceID string // jcd, two digits
	Round   int    // rno
}

// ID returns the race_id, date_venue_round
func (k RaceKey) ID() string {
	return RaceID(k.Date, k.PlaceID, k.Round)
}

// RaceID builds a race_id from its parts
func RaceID(date, placeID string, round int) string {
	return date + "_" + placeID + "_" + strconv.Itoa(round)
}

func newRaceKey(rno, jcd, hd string) (RaceKey, error) {
	round, err := strconv.Atoi(rno)
	if err != nil {
		return RaceKey{}, fieldErr("url", rno, ErrPatternMismatch)
	}
	return RaceKey{Date: hd, PlaceID: jcd, Round: round}, nil
}

func matchRaceKey(pattern *regexp.Regexp, url string) (RaceKey, error) {
	m := pattern.FindStringSubmatch(url)
	if m == nil {
		return RaceKey{}, fieldErr("url", url, ErrPatternMismatch)
	}
	return newRaceKey(m[1], m[2], m[3])
}

// RaceListKey extracts the race from a racelist page URL
func RaceListKey(url string) (RaceKey, error) {
	return matchRaceKey(raceListURLPattern, url)
}

// RaceResultKey extracts the race from a raceresult page URL
func RaceResultKey(url string) (RaceKey, error) {
	return matchRaceKey(raceResultURLPattern, url)
}

// OddsKey extracts the race and the odds page variant from an odds page URL
func OddsKey(url string) (RaceKey, string, error) {
	m := oddsURLPattern.FindStringSubmatch(url)
	if m == nil {
		return RaceKey{}, "", fieldErr("url", url, ErrPatternMismatch)
	}
	key, err := newRaceKey(m[2], m[3], m[4])
	if err != nil {
		return RaceKey{}, "", err
	}
	return key, m[1] + m[5], nil
}

// Day returns the race day at midnight JST
func (k RaceKey) Day() (time.Time, error) {
	return time.ParseInLocation("20060102", k.Date, JST)
}
