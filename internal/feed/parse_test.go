package feed

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/boatrace-vote/internal/models"
)

func rec(url string, fields map[string]string) Record {
	r := Record{"url": {url}}
	for k, v := range fields {
		r[k] = []string{v}
	}
	return r
}

func TestParseBracket(t *testing.T) {
	e, err := ParseBracket(rec(testRaceList+"#bracket", map[string]string{
		"bracket_number":           "1",
		"racer_data1":              "4530 / B2",
		"racer_data2":              "福岡/福岡/34歳/44.5kg",
		"racer_data3":              "F0/L0/0.16",
		"racer_rate_all_place":     "7.06/53.62/75.36",
		"racer_rate_current_place": "0.00/0.00/0.00",
		"motor_rate":               "20/35.35/49.49",
		"boat_rate":                "61/31.43/48.57",
	}))
	require.NoError(t, err)

	assert.Equal(t, "20200101_24_12", e.RaceID)
	assert.Equal(t, "4530", e.RacerID)
	assert.Equal(t, models.RacerClassB2, e.RacerClass)
	assert.Equal(t, 34, e.Age)
	require.NotNil(t, e.Weight)
	assert.Equal(t, 44.5, *e.Weight)
	require.NotNil(t, e.AverageStartTiming)
	assert.Equal(t, 0.16, *e.AverageStartTiming)
	assert.Equal(t, 7.06, e.FirstPlaceRateAllPlace)
	assert.Equal(t, 20, e.MotorID)
	assert.Equal(t, 61, e.BoatID)
}

func TestParseBracketUnknownClass(t *testing.T) {
	_, err := ParseBracket(rec(testRaceList+"#bracket", map[string]string{
		"bracket_number":           "1",
		"racer_data1":              "4530/C9",
		"racer_data2":              "福岡/福岡/34歳/44.5kg",
		"racer_data3":              "F0/L0/-",
		"racer_rate_all_place":     "7.06/53.62/75.36",
		"racer_rate_current_place": "0.00/0.00/0.00",
		"motor_rate":               "20/35.35/49.49",
		"boat_rate":                "61/31.43/48.57",
	}))
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestParseBracketResult(t *testing.T) {
	r, err := ParseBracketResult(rec(testRaceList+"#bracket_result", map[string]string{
		"bracket_number":  "2",
		"run_number":      "3",
		"race_round":      "7",
		"start_timing":    ".25",
		"result":          "Ｆ",
		"approach_course": "",
		"bracket_color":   " is-boatColor5",
	}))
	require.NoError(t, err)

	assert.Equal(t, 0.25, r.StartTiming)
	assert.Equal(t, models.FinishFlyingStart, r.Result)
	assert.Nil(t, r.ApproachCourse)
	assert.Equal(t, 5, r.BracketNumberRun)
}

func TestParseFinishCode(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		{"転", models.FinishCapsized},
		{"落", models.FinishFell},
		{"エ", models.FinishEngineStop},
		{"妨", models.FinishInterference},
		{"Ｆ", models.FinishFlyingStart},
		{"F", models.FinishFlyingStart},
		{"Ｌ", models.FinishLateStart},
		{"不", models.FinishIncomplete},
		{"欠", models.FinishAbsent},
		{"沈", models.FinishSunk},
		{"＿", models.FinishNoRecord},
		{"失", models.FinishDisqualified},
		{"１", 1},
		{" 6 ", 6},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := parseFinishCode("result", tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Len(t, faultTokens, 11)

	_, err := parseFinishCode("result", "?")
	assert.ErrorIs(t, err, ErrUnknownToken)
	_, err = parseFinishCode("result", "0")
	assert.ErrorIs(t, err, ErrMalformedField)
}

func TestFaultTokensInjective(t *testing.T) {
	codes := make(map[int]bool)
	for _, code := range faultTokens {
		assert.False(t, codes[code], "duplicate fault code %d", code)
		assert.Less(t, code, 0)
		codes[code] = true
	}
}

func TestParseRaceInfo(t *testing.T) {
	info, err := ParseRaceInfo(rec(testRaceList+"#info", map[string]string{
		"start_time":    "20:38",
		"course_length": "優勝戦　　　　1800m",
	}))
	require.NoError(t, err)

	assert.Equal(t, "20200101_24_12", info.RaceID)
	assert.Equal(t, "24", info.PlaceID)
	assert.Equal(t, 12, info.RaceRound)
	assert.True(t, info.StartDatetime.Equal(time.Date(2020, 1, 1, 11, 38, 0, 0, time.UTC)))
	assert.Equal(t, "優勝戦", info.RaceSubname)
	assert.Equal(t, 1800, info.CourseLength)
}

func TestParseRaceIndex(t *testing.T) {
	r := Record{
		"url":        {"https://www.boatrace.jp/owpc/pc/race/raceindex?jcd=24&hd=20200102"},
		"place_id":   {"24"},
		"place_name": {"大村"},
		"race_name":  {"正月特選"},
		"race_grade": {"heading2_title is-G1 "},
		"race_index_urls": {
			"https://www.boatrace.jp/owpc/pc/race/raceindex?jcd=24&hd=20200102",
			"https://www.boatrace.jp/owpc/pc/race/raceindex?jcd=24&hd=20191230",
			"https://www.boatrace.jp/owpc/pc/race/raceindex?jcd=24&hd=20191231",
		},
	}
	idx, err := ParseRaceIndex(r)
	require.NoError(t, err)

	assert.Equal(t, "20191230_24", idx.RaceIndexID)
	assert.Equal(t, models.RaceGradeG1, idx.RaceGrade)
	assert.Len(t, idx.Days, 3)
}

func TestParseFinishResult(t *testing.T) {
	tests := []struct {
		name     string
		result   string
		time     string
		want     int
		wantTime *float64
		wantErr  error
	}{
		{name: "winner", result: "１", time: `1'51"0`, want: 1, wantTime: ptr(111.0)},
		{name: "flying start without time", result: "Ｆ", time: "", want: models.FinishFlyingStart},
		{name: "garbled time", result: "2", time: "fast", wantErr: ErrMalformedField},
		{name: "unknown token", result: "？", time: "", wantErr: ErrUnknownToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseFinishResult(rec(testRaceResult+"#result", map[string]string{
				"bracket_number": "3",
				"result":         tt.result,
				"result_time":    tt.time,
			}))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Result)
			assert.Equal(t, tt.wantTime, r.ResultTime)
		})
	}
}

func TestParseStartResult(t *testing.T) {
	r, err := ParseStartResult(rec(testRaceResult+"#start", map[string]string{
		"bracket_number": "1",
		"start_time":     ".12   まくり",
	}))
	require.NoError(t, err)
	require.NotNil(t, r.ResultStartTime)
	assert.Equal(t, 0.12, *r.ResultStartTime)
	require.NotNil(t, r.Kimarite)
	assert.Equal(t, "まくり", *r.Kimarite)

	late, err := ParseStartResult(rec(testRaceResult+"#start", map[string]string{
		"bracket_number": "4",
		"start_time":     "L",
	}))
	require.NoError(t, err)
	assert.Nil(t, late.ResultStartTime)
	assert.Nil(t, late.Kimarite)
}

func TestParsePayoff(t *testing.T) {
	tests := []struct {
		name     string
		betType  string
		bracket  string
		payoff   string
		wantType models.BetType
		wantComb models.Combination
		want     string
	}{
		{name: "win", betType: "単勝", bracket: "3", payoff: "¥1,450", wantType: models.BetTypeWin, wantComb: models.Combination{3}, want: "14.5"},
		{name: "full width yen", betType: "単勝", bracket: "3", payoff: "￥１，４５０", wantType: models.BetTypeWin, wantComb: models.Combination{3}, want: "14.5"},
		{name: "exacta", betType: "2連単", bracket: "2-3", payoff: "¥890", wantType: models.BetTypeExacta, wantComb: models.Combination{2, 3}, want: "8.9"},
		{name: "quinella sorted", betType: "2連複", bracket: "4=1", payoff: "¥550", wantType: models.BetTypeQuinella, wantComb: models.Combination{1, 4}, want: "5.5"},
		{name: "trifecta", betType: "3連単", bracket: "2-3-4", payoff: "¥12,340", wantType: models.BetTypeTrifecta, wantComb: models.Combination{2, 3, 4}, want: "123.4"},
		{name: "trio sorted", betType: "3連複", bracket: "6=2=3", payoff: "¥2,010", wantType: models.BetTypeTrio, wantComb: models.Combination{2, 3, 6}, want: "20.1"},
		{name: "not established", betType: "3連単", bracket: "不成立", payoff: "", wantType: models.BetTypeTrifecta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayoff(rec(testRaceResult+"#payoff", map[string]string{
				"bet_type":       tt.betType,
				"bracket_number": tt.bracket,
				"payoff":         tt.payoff,
				"favorite":       "",
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, p.BetType)
			assert.Equal(t, tt.wantComb, p.Combination)
			if tt.want == "" {
				assert.False(t, p.Payoff.Valid)
				return
			}
			require.True(t, p.Payoff.Valid)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(p.Payoff.Decimal), p.Payoff.Decimal.String())
		})
	}
}

func TestParsePayoffUnknownBetType(t *testing.T) {
	_, err := ParsePayoff(rec(testRaceResult+"#payoff", map[string]string{
		"bet_type":       "4連単",
		"bracket_number": "1-2-3-4",
		"payoff":         "¥100",
	}))
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestParsePayoffWrongArity(t *testing.T) {
	_, err := ParsePayoff(rec(testRaceResult+"#payoff", map[string]string{
		"bet_type":       "3連単",
		"bracket_number": "1-2",
		"payoff":         "¥100",
	}))
	assert.ErrorIs(t, err, ErrMalformedField)
}

func TestParsePayoffInvalidCombination(t *testing.T) {
	tests := []struct {
		name    string
		betType string
		bracket string
	}{
		{name: "win bracket zero", betType: "単勝", bracket: "0"},
		{name: "win bracket seven", betType: "単勝", bracket: "7"},
		{name: "exacta bracket seven", betType: "2連単", bracket: "7-1"},
		{name: "quinella repeated", betType: "2連複", bracket: "3=3"},
		{name: "trio repeated", betType: "3連複", bracket: "1=4=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayoff(rec(testRaceResult+"#payoff", map[string]string{
				"bet_type":       tt.betType,
				"bracket_number": tt.bracket,
				"payoff":         "¥100",
			}))
			assert.ErrorIs(t, err, ErrMalformedField)
			assert.ErrorIs(t, err, models.ErrInvalidCombination)
		})
	}
}

func TestParseOdds(t *testing.T) {
	base := "https://www.boatrace.jp/owpc/pc/race/"
	query := "?rno=12&jcd=24&hd=20200101"

	tests := []struct {
		name     string
		url      string
		brackets []string
		odds     string
		wantType models.BetType
		wantComb models.Combination
		odds1    *float64
		odds2    *float64
	}{
		{name: "win", url: base + "oddstf" + query + "#oddst", brackets: []string{"1"}, odds: "1.9", wantType: models.BetTypeWin, wantComb: models.Combination{1}, odds1: ptr(1.9)},
		{name: "place range", url: base + "oddstf" + query + "#oddsf", brackets: []string{"2"}, odds: "2.6-3.4", wantType: models.BetTypePlace, wantComb: models.Combination{2}, odds1: ptr(2.6), odds2: ptr(3.4)},
		{name: "quinella place", url: base + "oddsk" + query, brackets: []string{"3", "1"}, odds: "1.2-1.5", wantType: models.BetTypeQuinellaPlace, wantComb: models.Combination{1, 3}, odds1: ptr(1.2), odds2: ptr(1.5)},
		{name: "exacta", url: base + "odds2tf" + query + "#odds2t", brackets: []string{"3", "1"}, odds: "15.3", wantType: models.BetTypeExacta, wantComb: models.Combination{3, 1}, odds1: ptr(15.3)},
		{name: "quinella", url: base + "odds2tf" + query + "#odds2f", brackets: []string{"3", "1"}, odds: "7.7", wantType: models.BetTypeQuinella, wantComb: models.Combination{1, 3}, odds1: ptr(7.7)},
		{name: "trifecta", url: base + "odds3t" + query, brackets: []string{"1", "2", "3"}, odds: "8.6", wantType: models.BetTypeTrifecta, wantComb: models.Combination{1, 2, 3}, odds1: ptr(8.6)},
		{name: "trio", url: base + "odds3f" + query + "#anything", brackets: []string{"5", "2", "3"}, odds: "44.0", wantType: models.BetTypeTrio, wantComb: models.Combination{2, 3, 5}, odds1: ptr(44.0)},
		{name: "scratched", url: base + "odds3t" + query, brackets: []string{"1", "2", "6"}, odds: "欠場", wantType: models.BetTypeTrifecta, wantComb: models.Combination{1, 2, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{"url": {tt.url}, "odds": {tt.odds}}
			for i, b := range tt.brackets {
				r["bracket_number_"+string(rune('1'+i))] = []string{b}
			}
			o, err := ParseOdds(r)
			require.NoError(t, err)
			require.NotNil(t, o)
			assert.Equal(t, "20200101_24_12", o.RaceID)
			assert.Equal(t, tt.wantType, o.BetType)
			assert.Equal(t, tt.wantComb, o.Combination)
			assert.Equal(t, tt.odds1, o.Odds1)
			assert.Equal(t, tt.odds2, o.Odds2)
		})
	}
}

func TestParseOddsCancelledRace(t *testing.T) {
	o, err := ParseOdds(Record{"url": {"https://www.boatrace.jp/owpc/pc/race/odds3t?rno=12&jcd=24&hd=20200101"}})
	assert.NoError(t, err)
	assert.Nil(t, o)
}

func TestParseOddsMalformedRange(t *testing.T) {
	_, err := ParseOdds(Record{
		"url":              {"https://www.boatrace.jp/owpc/pc/race/oddstf?rno=12&jcd=24&hd=20200101#oddsf"},
		"bracket_number_1": {"1"},
		"odds":             {"2.6"},
	})
	assert.ErrorIs(t, err, ErrMalformedField)
}

func TestParseOddsInvalidCombination(t *testing.T) {
	base := "https://www.boatrace.jp/owpc/pc/race/"
	query := "?rno=12&jcd=24&hd=20200101"

	tests := []struct {
		name     string
		url      string
		brackets []string
	}{
		{name: "win bracket zero", url: base + "oddstf" + query + "#oddst", brackets: []string{"0"}},
		{name: "win bracket seven", url: base + "oddstf" + query + "#oddst", brackets: []string{"7"}},
		{name: "quinella repeated", url: base + "odds2tf" + query + "#odds2f", brackets: []string{"3", "3"}},
		{name: "trifecta repeated", url: base + "odds3t" + query, brackets: []string{"1", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{"url": {tt.url}, "odds": {"5.0"}}
			for i, b := range tt.brackets {
				r["bracket_number_"+string(rune('1'+i))] = []string{b}
			}
			_, err := ParseOdds(r)
			assert.ErrorIs(t, err, ErrMalformedField)
			assert.ErrorIs(t, err, models.ErrInvalidCombination)
		})
	}
}

func TestParsersAgreeOnRaceID(t *testing.T) {
	const want = "20200101_24_12"
	odds := "https://www.boatrace.jp/owpc/pc/race/oddstf?rno=12&jcd=24&hd=20200101#oddst"

	tests := []struct {
		name  string
		parse func() (string, error)
	}{
		{name: "bracket", parse: func() (string, error) {
			e, err := ParseBracket(rec(testRaceList+"#bracket", map[string]string{
				"bracket_number":           "1",
				"racer_data1":              "4530 / B2",
				"racer_data2":              "福岡/福岡/34歳/44.5kg",
				"racer_data3":              "F0/L0/0.16",
				"racer_rate_all_place":     "7.06/53.62/75.36",
				"racer_rate_current_place": "0.00/0.00/0.00",
				"motor_rate":               "20/35.35/49.49",
				"boat_rate":                "61/31.43/48.57",
			}))
			if err != nil {
				return "", err
			}
			return e.RaceID, nil
		}},
		{name: "bracket result", parse: func() (string, error) {
			r, err := ParseBracketResult(rec(testRaceList+"#bracket_result", map[string]string{
				"bracket_number":  "2",
				"run_number":      "3",
				"race_round":      "7",
				"start_timing":    ".25",
				"result":          "１",
				"approach_course": "2",
				"bracket_color":   " is-boatColor5",
			}))
			if err != nil {
				return "", err
			}
			return r.RaceID, nil
		}},
		{name: "race info", parse: func() (string, error) {
			info, err := ParseRaceInfo(rec(testRaceList+"#info", map[string]string{
				"start_time":    "20:38",
				"course_length": "優勝戦　　　　1800m",
			}))
			if err != nil {
				return "", err
			}
			return info.RaceID, nil
		}},
		{name: "finish result", parse: func() (string, error) {
			r, err := ParseFinishResult(rec(testRaceResult+"#result", map[string]string{
				"bracket_number": "3",
				"result":         "１",
				"result_time":    `1'51"0`,
			}))
			if err != nil {
				return "", err
			}
			return r.RaceID, nil
		}},
		{name: "start result", parse: func() (string, error) {
			r, err := ParseStartResult(rec(testRaceResult+"#start", map[string]string{
				"bracket_number": "1",
				"start_time":     ".12   まくり",
			}))
			if err != nil {
				return "", err
			}
			return r.RaceID, nil
		}},
		{name: "payoff", parse: func() (string, error) {
			p, err := ParsePayoff(rec(testRaceResult+"#payoff", map[string]string{
				"bet_type":       "単勝",
				"bracket_number": "3",
				"payoff":         "¥1,450",
			}))
			if err != nil {
				return "", err
			}
			return p.RaceID, nil
		}},
		{name: "odds", parse: func() (string, error) {
			o, err := ParseOdds(rec(odds, map[string]string{
				"bracket_number_1": "1",
				"odds":             "1.9",
			}))
			if err != nil {
				return "", err
			}
			return o.RaceID, nil
		}},
	}

	ids := make(map[string]bool)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.parse()
			require.NoError(t, err)
			assert.Equal(t, want, id)
			ids[id] = true
		})
	}
	assert.Len(t, ids, 1)
}

func TestParseRacerProfile(t *testing.T) {
	p, err := ParseRacerProfile(Record{
		"url":          {"https://www.boatrace.jp/owpc/pc/data/racersearch/profile?toban=4530"},
		"racer_id":     {"4530"},
		"name":         {"小野　生奈"},
		"name_kana":    {"おの　せいな"},
		"birth_day":    {"1989/11/13"},
		"height":       {"163cm"},
		"weight":       {"47kg"},
		"blood_type":   {"O型"},
		"belong_to":    {"福岡"},
		"birth_place":  {"福岡県"},
		"debut_period": {"103期"},
		"racer_class":  {"A1級"},
	})
	require.NoError(t, err)

	assert.Equal(t, "4530", p.RacerID)
	assert.Equal(t, 163, p.Height)
	assert.Equal(t, 47, p.Weight)
	assert.Equal(t, models.BloodTypeO, p.BloodType)
	assert.Equal(t, 103, p.DebutPeriod)
	assert.Equal(t, models.RacerClassA1, p.RacerClass)
	assert.Equal(t, 1989, p.BirthDay.Year())

	unknown, err := ParseRacerProfile(Record{"url": {"https://www.boatrace.jp/owpc/pc/data/racersearch/profile?toban=9999"}})
	assert.NoError(t, err)
	assert.Nil(t, unknown)
}

func ptr(f float64) *float64 {
	return &f
}
