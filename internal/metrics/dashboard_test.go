package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/tunneldesk/internal/models"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleMetrics() []models.Metric {
	return []models.Metric{
		{Timestamp: t0.Add(100 * time.Millisecond), SiteID: "alpha", Name: BytesIn, Value: 10},
		{Timestamp: t0.Add(900 * time.Millisecond), SiteID: "alpha", Name: BytesIn, Value: 5},
		{Timestamp: t0.Add(1500 * time.Millisecond), SiteID: "alpha", Name: BytesIn, Value: 7},
		{Timestamp: t0.Add(200 * time.Millisecond), SiteID: "alpha", Name: BytesOut, Value: 100},
		{Timestamp: t0.Add(300 * time.Millisecond), SiteID: "beta", Name: "latency", Value: 1},
	}
}

// fakeAPI serves the metrics endpoints from fixed data
func fakeAPI(t *testing.T, metrics []models.Metric, events []models.Event, current models.CurrentSite) *httptest.Server {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/current", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, current)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, metrics)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics/{siteId}", func(w http.ResponseWriter, r *http.Request) {
		siteID := mux.Vars(r)["siteId"]
		filtered := []models.Metric{}
		for _, m := range metrics {
			if m.SiteID == siteID {
				filtered = append(filtered, m)
			}
		}
		writeJSON(w, filtered)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, events)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/events/{siteId}", func(w http.ResponseWriter, r *http.Request) {
		siteID := mux.Vars(r)["siteId"]
		filtered := []models.Event{}
		for _, e := range events {
			if e.SiteID == siteID {
				filtered = append(filtered, e)
			}
		}
		writeJSON(w, filtered)
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestGroupBySecond(t *testing.T) {
	grouped := GroupBySecond(sampleMetrics())

	assert.Equal(t, Series{
		Labels: []string{"01/03/24 12:00:00", "01/03/24 12:00:01"},
		Values: []float64{15, 7},
	}, grouped[BytesIn])
	assert.Equal(t, Series{
		Labels: []string{"01/03/24 12:00:00"},
		Values: []float64{100},
	}, grouped[BytesOut])
	assert.Contains(t, grouped, "latency")
	assert.Equal(t, float64(22), grouped[BytesIn].Total())
}

func TestGroupBySecond_Empty(t *testing.T) {
	grouped := GroupBySecond(nil)
	assert.Empty(t, grouped)
	assert.Zero(t, grouped[BytesIn].Total())
}

func TestDashboard_RefreshAllSites(t *testing.T) {
	events := []models.Event{
		{Timestamp: t0, SiteID: "alpha", Message: "started"},
		{Timestamp: t0, SiteID: "beta", Message: "started"},
	}
	current := models.CurrentSite{URL: "https://alpha.loophole.site", StartedAt: t0}
	srv := fakeAPI(t, sampleMetrics(), events, current)

	d := NewDashboard(NewClient(srv.URL+"/"), "")
	d.now = func() time.Time { return t0.Add(5 * time.Minute) }
	require.NoError(t, d.Refresh(context.Background()))

	assert.False(t, d.Error)
	assert.Equal(t, "https://alpha.loophole.site", d.Current.URL)
	assert.Equal(t, []float64{15, 7}, d.BytesIn.Values)
	assert.Equal(t, []float64{100}, d.BytesOut.Values)
	assert.Len(t, d.Events, 2)
	assert.Equal(t, "5 minutes ago", d.UpSince())
}

func TestDashboard_RefreshSingleSite(t *testing.T) {
	events := []models.Event{
		{Timestamp: t0, SiteID: "alpha", Message: "started"},
		{Timestamp: t0, SiteID: "beta", Message: "started"},
	}
	srv := fakeAPI(t, sampleMetrics(), events, models.CurrentSite{})

	d := NewDashboard(NewClient(srv.URL), "beta")
	require.NoError(t, d.Refresh(context.Background()))

	assert.Empty(t, d.BytesIn.Values)
	require.Len(t, d.Events, 1)
	assert.Equal(t, "beta", d.Events[0].SiteID)
	assert.Equal(t, "unknown", d.UpSince())
}

func TestDashboard_ErrorFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDashboard(NewClient(srv.URL), "")
	err := d.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.True(t, d.Error)
}

func TestDashboard_ErrorFlagClearedOnSuccess(t *testing.T) {
	srv := fakeAPI(t, nil, nil, models.CurrentSite{})
	d := NewDashboard(NewClient(srv.URL), "")
	d.Error = true

	require.NoError(t, d.Refresh(context.Background()))
	assert.False(t, d.Error)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Metrics(context.Background())
	assert.Error(t, err)
}

func TestAgo(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "a few seconds ago"},
		{time.Minute, "a minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "an hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{30 * time.Hour, "a day ago"},
		{72 * time.Hour, "3 days ago"},
		{-5 * time.Minute, "5 minutes from now"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ago(t0, t0.Add(tt.d)), tt.d.String())
	}
}
