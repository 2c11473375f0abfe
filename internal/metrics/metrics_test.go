package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordFeedRecord(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(FeedRecordsTotal.WithLabelValues("odds", FeedStatusParsed))
	RecordFeedRecord("odds", FeedStatusParsed)
	RecordFeedRecord("odds", FeedStatusParsed)

	assert.Equal(t, before+2, testutil.ToFloat64(FeedRecordsTotal.WithLabelValues("odds", FeedStatusParsed)))
}

func TestObserveFeedParse(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		ObserveFeedParse(0.25)
	})
}

func TestRecordStorageRequest(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		err    error
		result string
	}{
		{name: "success", err: nil, result: "ok"},
		{name: "failure", err: errors.New("boom"), result: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(StorageRequestsTotal.WithLabelValues("get", tt.result))
			RecordStorageRequest("get", tt.err, 0.01)
			assert.Equal(t, before+1, testutil.ToFloat64(StorageRequestsTotal.WithLabelValues("get", tt.result)))
		})
	}
}

func TestRecordSettlement(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name    string
		outcome string
		payoff  float64
	}{
		{name: "settled with return", outcome: "settled", payoff: 14.5},
		{name: "voided", outcome: "voided", payoff: 0},
		{name: "pending", outcome: "pending", payoff: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(PayoffAmountTotal)
			RecordSettlement(tt.outcome, tt.payoff)
			assert.InDelta(t, before+tt.payoff, testutil.ToFloat64(PayoffAmountTotal), 1e-9)
		})
	}
}

func TestRecordVote(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(VotesPlacedTotal.WithLabelValues("trifecta"))
	RecordVote(map[string]int{"trifecta": 3, "win": 1}, 4)

	assert.Equal(t, before+3, testutil.ToFloat64(VotesPlacedTotal.WithLabelValues("trifecta")))
}

func TestUpdateRacesRemaining(t *testing.T) {
	InitRegistry()

	UpdateRacesRemaining(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(RacesRemaining))
}

func TestRecordCycle(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCycle(nil, 1.5)
		RecordCycle(errors.New("storage down"), 0.2)
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordFeedRecord("payoff", FeedStatusParsed)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "boatrace_vote_feed_records_total")
}
