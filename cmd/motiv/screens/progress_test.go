package screens

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metamotivation/internal/api"
)

func TestSummarizeCheckins(t *testing.T) {
	t.Parallel()
	history := []api.MotivationEntry{
		{MotivationLevel: 2}, {MotivationLevel: 4}, {MotivationLevel: 6},
		{MotivationLevel: 8}, {MotivationLevel: 10}, {MotivationLevel: 6},
	}

	sum := summarizeCheckins(history)
	assert.Equal(t, 6, sum.Count)
	assert.InDelta(t, 6.0, sum.Average, 0.001)
	assert.Equal(t, 10, sum.Best)
	assert.Equal(t, []int{4, 6, 8, 10, 6}, sum.Last, "only the five most recent levels")
}

func TestSummarizeCheckins_Empty(t *testing.T) {
	t.Parallel()
	sum := summarizeCheckins(nil)
	assert.Equal(t, 0, sum.Count)
	assert.Empty(t, sum.Last)
}

func TestStrongestSection(t *testing.T) {
	t.Parallel()
	best, ok := strongestSection([]api.SectionScore{
		{SectionName: "Autonomy", AverageScore: 4.2},
		{SectionName: "Purpose", AverageScore: 6.1},
		{SectionName: "Discipline", AverageScore: 5.0},
	})
	require.True(t, ok)
	assert.Equal(t, "Purpose", best.SectionName)

	_, ok = strongestSection(nil)
	assert.False(t, ok)
}

func TestMotivationalMessage_Bands(t *testing.T) {
	t.Parallel()
	assert.Contains(t, motivationalMessage(8.5), "on fire")
	assert.Contains(t, motivationalMessage(6.0), "Solid progress")
	assert.Contains(t, motivationalMessage(4.9), "showing up")
	assert.Contains(t, motivationalMessage(2.0), "Rough stretch")
}

func TestProgress_PartialDataStillRenders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/dashboard/motivation-history":
			w.Write([]byte(`[{"motivation_level":7,"date":"2026-08-30"}]`))
		case "/api/v1/dashboard/questionnaire-summary":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"summary unavailable"}`))
		}
	}))
	defer srv.Close()

	deps := newTestDeps(t, srv, nil)
	require.NoError(t, deps.Session.Save("tok"))

	m := newProgressModel(deps)
	msg := runCmd(t, m.enter())
	m, _ = m.update(msg)

	assert.False(t, m.loading)
	assert.True(t, m.dash.HasData(), "history half must survive the summary failure")
	assert.Len(t, m.dash.History, 1)

	view := m.view()
	assert.Contains(t, view, "Daily check-ins")
}

func TestProgress_NoDataMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	deps := newTestDeps(t, srv, nil)
	require.NoError(t, deps.Session.Save("tok"))

	m := newProgressModel(deps)
	msg := runCmd(t, m.enter())
	m, _ = m.update(msg)

	assert.Contains(t, m.view(), "No data yet")
}
