package feed

import (
	"strconv"
	"strings"

	"github.com/yourusername/boatrace-vote/internal/models"
	"golang.org/x/text/width"
)

var racerClassTokens = map[string]models.RacerClass{
	"A1": models.RacerClassA1,
	"A2": models.RacerClassA2,
	"B1": models.RacerClassB1,
	"B2": models.RacerClassB2,
}

// Race grade is read from the CSS class of the index heading, e.g.
// "heading2_title is-G1 ".
var raceGradeTokens = []struct {
	token string
	grade models.RaceGrade
}{
	{"is-ippan", models.RaceGradeIppan},
	{"is-G3", models.RaceGradeG3},
	{"is-G2", models.RaceGradeG2},
	{"is-G1", models.RaceGradeG1},
	{"is-SG", models.RaceGradeSG},
}

var bloodTypeTokens = map[string]int{
	"A型":  models.BloodTypeA,
	"B型":  models.BloodTypeB,
	"O型":  models.BloodTypeO,
	"AB型": models.BloodTypeAB,
}

var faultTokens = map[string]int{
	"転": models.FinishCapsized,
	"落": models.FinishFell,
	"エ": models.FinishEngineStop,
	"妨": models.FinishInterference,
	"Ｆ": models.FinishFlyingStart,
	"Ｌ": models.FinishLateStart,
	"不": models.FinishIncomplete,
	"欠": models.FinishAbsent,
	"沈": models.FinishSunk,
	"＿": models.FinishNoRecord,
	"失": models.FinishDisqualified,
}

// Odds pages keyed by path plus fragment. oddsk, odds3t and odds3f carry a
// single bet type whatever the fragment.
var oddsPageBetTypes = map[string]models.BetType{
	"oddstf#oddst":   models.BetTypeWin,
	"oddstf#oddsf":   models.BetTypePlace,
	"oddsk":          models.BetTypeQuinellaPlace,
	"odds2tf#odds2t": models.BetTypeExacta,
	"odds2tf#odds2f": models.BetTypeQuinella,
	"odds3t":         models.BetTypeTrifecta,
	"odds3f":         models.BetTypeTrio,
}

const (
	payoffNotEstablished = "不成立"
	payoffSpecial        = "特払"
	oddsScratched        = "欠場"
)

func oddsPageBetType(page string) (models.BetType, bool) {
	if bt, ok := oddsPageBetTypes[page]; ok {
		return bt, true
	}
	if i := strings.Index(page, "#"); i >= 0 {
		base := page[:i]
		if base == "oddsk" || base == "odds3t" || base == "odds3f" {
			return oddsPageBetTypes[base], true
		}
	}
	return 0, false
}

// normalize trims surrounding space, including NBSP and ideographic space,
// and folds full-width digits and ASCII to their narrow forms.
func normalize(s string) string {
	return width.Narrow.String(strings.TrimSpace(s))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func parseInt(field, value string) (int, error) {
	n, err := strconv.Atoi(normalize(value))
	if err != nil {
		return 0, fieldErr(field, value, ErrMalformedField)
	}
	return n, nil
}

func parseFloat(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(normalize(value), 64)
	if err != nil {
		return 0, fieldErr(field, value, ErrMalformedField)
	}
	return f, nil
}

// parseSuffixedInt reads values such as "163cm" or "113期"
func parseSuffixedInt(field, value, suffix string) (int, error) {
	return parseInt(field, strings.TrimSuffix(normalize(value), suffix))
}

// splitExact splits a compound field and insists on the part count
func splitExact(field, value, sep string, n int) ([]string, error) {
	parts := strings.Split(value, sep)
	if len(parts) != n {
		return nil, fieldErr(field, value, ErrMalformedField)
	}
	return parts, nil
}

// parseFinishCode maps a finish cell to a rank or a negative fault code
func parseFinishCode(field, value string) (int, error) {
	token := strings.TrimSpace(value)
	if code, ok := faultTokens[token]; ok {
		return code, nil
	}
	if code, ok := faultTokens[width.Widen.String(token)]; ok {
		return code, nil
	}
	rank, err := strconv.Atoi(normalize(token))
	if err != nil {
		return 0, fieldErr(field, value, ErrUnknownToken)
	}
	if rank < 1 {
		return 0, fieldErr(field, value, ErrMalformedField)
	}
	return rank, nil
}

// optionalFloat reads a value where "-" or a blank cell means no data
func optionalFloat(field, value string) (*float64, error) {
	v := strings.TrimSpace(value)
	if v == "" || v == "-" {
		return nil, nil
	}
	f, err := parseFloat(field, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optionalInt(field, value string) (*int, error) {
	if isBlank(value) {
		return nil, nil
	}
	n, err := parseInt(field, value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
