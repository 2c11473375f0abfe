package feed

import "strings"

// Kind names the entity a record parses into
type Kind int

const (
	KindUnknown Kind = iota
	KindRaceIndex
	KindBracket
	KindBracketResult
	KindRaceInfo
	KindFinishResult
	KindStartResult
	KindPayoff
	KindOdds
	KindRacerProfile
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindRaceIndex:     "race_index",
	KindBracket:       "bracket",
	KindBracketResult: "bracket_result",
	KindRaceInfo:      "race_info",
	KindFinishResult:  "finish_result",
	KindStartResult:   "start_result",
	KindPayoff:        "payoff",
	KindOdds:          "odds",
	KindRacerProfile:  "racer_profile",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Kinds lists every parseable kind
func Kinds() []Kind {
	return []Kind{
		KindRaceIndex, KindBracket, KindBracketResult, KindRaceInfo,
		KindFinishResult, KindStartResult, KindPayoff, KindOdds, KindRacerProfile,
	}
}

const (
	siteBase           = "https://www.boatrace.jp/owpc/pc/"
	raceIndexPrefix    = siteBase + "race/raceindex?"
	raceListPrefix     = siteBase + "race/racelist?"
	raceResultPrefix   = siteBase + "race/raceresult?"
	oddsPrefix         = siteBase + "race/odds"
	racerProfilePrefix = siteBase + "data/racersearch/profile?"
)

type route struct {
	prefix string
	suffix string
	kind   Kind
}

// Routes are checked in order. The fragment suffix separates the three
// race list and three race result variants that share a path.
var routes = []route{
	{raceIndexPrefix, "", KindRaceIndex},
	{raceListPrefix, "#bracket", KindBracket},
	{raceListPrefix, "#bracket_result", KindBracketResult},
	{raceListPrefix, "#info", KindRaceInfo},
	{raceResultPrefix, "#result", KindFinishResult},
	{raceResultPrefix, "#start", KindStartResult},
	{raceResultPrefix, "#payoff", KindPayoff},
	{oddsPrefix, "", KindOdds},
	{racerProfilePrefix, "", KindRacerProfile},
}

// Classify routes a record by its url field
func Classify(rec Record) Kind {
	url := rec.URL()
	if url == "" {
		return KindUnknown
	}
	for _, r := range routes {
		if strings.HasPrefix(url, r.prefix) && strings.HasSuffix(url, r.suffix) {
			return r.kind
		}
	}
	return KindUnknown
}
