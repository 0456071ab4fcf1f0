package http_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/flood-alert-dashboard/internal/adapter/http"
	"github.com/couchcryptid/flood-alert-dashboard/internal/dashboard"
	"github.com/couchcryptid/flood-alert-dashboard/internal/dataset"
	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
	"github.com/couchcryptid/flood-alert-dashboard/internal/observability"
)

func testRows() []domain.Row {
	row := func(i int, river, basin string, territory, level, year int, lat, lon float64) domain.Row {
		return domain.Row{
			Index: i,
			PointRecord: domain.PointRecord{
				Feature:   i / 2,
				Latitude:  lat,
				Longitude: lon,
				Alert:     domain.Alert{River: river, Basin: basin, Territory: territory, Level: level},
			},
			Year:  year,
			Month: 3,
		}
	}
	return []domain.Row{
		row(0, "Garonne", "FRF", 25, 1, 2006, 44.0, 0.5),
		row(1, "Garonne", "FRF", 25, 1, 2006, 44.2, 0.7),
		row(2, "Oise", "EU31", 4, 2, 2013, 49.0, 3.0),
		row(3, "Oise", "EU31", 4, 2, 2013, 49.2, 3.2),
	}
}

func newTestServer(t *testing.T, ds *dataset.Dataset) (*httpadapter.Server, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetricsForTesting()
	return httpadapter.NewServer(":0", ds, slog.Default(), m), m
}

func get(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(t, dataset.New(testRows(), dataset.Meta{}))
	rec := get(srv, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	for name, ds := range map[string]*dataset.Dataset{
		"nil dataset":   nil,
		"empty dataset": dataset.New(nil, dataset.Meta{}),
	} {
		t.Run(name, func(t *testing.T) {
			srv, _ := newTestServer(t, ds)
			rec := get(srv, "/readyz")

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDatasetEndpoint(t *testing.T) {
	srv, m := newTestServer(t, dataset.New(testRows(), dataset.Meta{Source: "fixture.geojson"}))
	rec := get(srv, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Meta dataset.Meta     `json:"meta"`
		Rows []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fixture.geojson", body.Meta.Source)
	assert.Equal(t, 4, body.Meta.Rows)
	require.Len(t, body.Rows, 4)
	assert.Equal(t, "Oise", body.Rows[2]["LbEntCru"])
	assert.Equal(t, "EU31", body.Rows[2]["CdDiEnt_1"])
	assert.InDelta(t, 3.0, body.Rows[2]["index"], 1e-9)

	assert.InDelta(t, 1, testutil.ToFloat64(m.PageRequests.WithLabelValues("dataset", "ok")), 1e-9)
}

func TestDataEndpointsUnavailableWithoutDataset(t *testing.T) {
	srv, m := newTestServer(t, dataset.New(nil, dataset.Meta{}))

	for _, target := range []string{
		"/api/dataset",
		"/api/options",
		"/api/pages/introduction",
		"/api/pages/alerts",
		"/api/pages/general-map",
		"/api/pages/territory-map",
	} {
		rec := get(srv, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
	assert.InDelta(t, 1, testutil.ToFloat64(m.PageRequests.WithLabelValues("alerts", "unavailable")), 1e-9)
}

func TestOptionsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, dataset.New(testRows(), dataset.Meta{}))
	rec := get(srv, "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	opts := decode[dashboard.Options](t, rec)
	assert.Equal(t, []int{1, 2}, opts.Levels)
	assert.Equal(t, 2006, opts.FirstYear)
	assert.Len(t, opts.Basins, 8)
}

func TestIntroductionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, dataset.New(testRows(), dataset.Meta{}))
	rec := get(srv, "/api/pages/introduction")
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[dashboard.Introduction](t, rec)
	assert.Equal(t, 4, page.Rows)
	require.Len(t, page.BasinShares, 2)
	assert.InDelta(t, 50.0, page.BasinShares[0].Percent, 1e-9)
}

func TestAlertsEndpointDefaults(t *testing.T) {
	srv, _ := newTestServer(t, dataset.New(testRows(), dataset.Meta{}))
	rec := get(srv, "/api/pages/alerts")
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[dashboard.Alerts](t, rec)
	assert.Equal(t, "Adour-Garonne", page.Basin)
	assert.Equal(t, 2006, page.Year)
	assert.Equal(t, []dashboard.RiverLevelCount{{River: "Garonne", Level: 1, Count: 2}}, page.RiverLevels)
	assert.Equal(t, []dashboard.LevelCount{{Level: 1, Count: 2}}, page.Levels)
}

func TestAlertsEndpointSelections(t *testing.T) {
	srv, _ := newTestServer(t, dataset.New(testRows(), dataset.Meta{}))
	rec := get(srv, "/api/pages/alerts?basin=Seine-Normandie&year=2013&territory=Seine+aval-C%C3%B4tiers+Normands")
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[dashboard.Alerts](t, rec)
	assert.Equal(t, []dashboard.RiverLevelCount{{River: "Oise", Level: 2, Count: 2}}, page.RiverLevels)
	assert.Equal(t, []dashboard.YearCount{{Year: 2013, Count: 2}}, page.Years)
}

func TestPageEndpointsRejectBadQueries(t *testing.T) {
	srv, m := newTestServer(t, dataset.New(testRows(), dataset.Meta{}))

	tests := []struct {
		name   string
		target string
		errMsg string
	}{
		{"non-numeric year", "/api/pages/alerts?year=twenty", `invalid year "twenty"`},
		{"unknown basin", "/api/pages/alerts?basin=Atlantis", "unknown basin"},
		{"unknown territory", "/api/pages/territory-map?territory=Nowhere", "unknown territory"},
		{"non-numeric level", "/api/pages/general-map?level=high", `invalid level "high"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(srv, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec)["error"], tt.errMsg)
		})
	}
	assert.InDelta(t, 2, testutil.ToFloat64(m.PageRequests.WithLabelValues("alerts", "bad_request")), 1e-9)
}

func TestGeneralMapEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, dataset.New(testRows(), dataset.Meta{}))

	rec := get(srv, "/api/pages/general-map?year=2013&level=2")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[dashboard.Density](t, rec)
	require.Len(t, m.Points, 2)
	require.NotNil(t, m.Center)
	assert.InDelta(t, 49.1, m.Center.Latitude, 1e-9)

	// defaults: first year, first level seen
	rec = get(srv, "/api/pages/general-map")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dashboard.Density](t, rec).Points, 2)

	rec = get(srv, "/api/pages/general-map?year=2023&level=1")
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[dashboard.Density](t, rec)
	assert.Empty(t, empty.Points)
	assert.Nil(t, empty.Center)
}

func TestTerritoryMapEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, dataset.New(testRows(), dataset.Meta{}))

	rec := get(srv, "/api/pages/territory-map?year=2006&territory=Garonne-Tarn-Lot")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[dashboard.Density](t, rec)
	assert.Len(t, m.Points, 2)
	assert.Equal(t, 7, m.Zoom)
}
