package pipeline_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-alert-dashboard/internal/adapter/vigicrues"
	"github.com/couchcryptid/flood-alert-dashboard/internal/dataset"
	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
	"github.com/couchcryptid/flood-alert-dashboard/internal/observability"
	"github.com/couchcryptid/flood-alert-dashboard/internal/pipeline"
)

// --- mocks ---

type mockSource struct {
	features []domain.RawFeature
	err      error
	calls    int
}

func (m *mockSource) Load(_ string) ([]domain.RawFeature, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.features, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func feature(index int, river, basin, at string, level, territory int, geom orb.Geometry) domain.RawFeature {
	return domain.RawFeature{
		Index: index,
		Properties: domain.Properties{
			River:     ptr(river),
			AlertTime: ptr(at),
			Level:     ptr(level),
			Basin:     ptr(basin),
			Territory: ptr(territory),
		},
		Geometry: geom,
	}
}

func build(t *testing.T, src pipeline.FeatureSource, seed uint64) (*dataset.Dataset, *observability.Metrics, error) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	ds, err := pipeline.New(src, discardLogger(), metrics).Build("InfoVigiCru.geojson", seed)
	return ds, metrics, err
}

// --- tests ---

func TestBuild_OiseScenario(t *testing.T) {
	ring := orb.LineString{{3.10, 49.60}, {3.20, 49.70}, {3.30, 49.60}, {3.10, 49.60}}
	src := &mockSource{features: []domain.RawFeature{
		feature(0, "Oise", "EU31", "2013-06-15T10:00:00", 1, 4, ring),
	}}

	ds, _, err := build(t, src, 1)
	require.NoError(t, err)
	require.Equal(t, 4, ds.Len())

	for i, r := range ds.Rows() {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, 2013, r.Year)
		assert.Equal(t, 6, r.Month)
		assert.Equal(t, "Oise", r.River)
		assert.Equal(t, "EU31", r.Basin)
		assert.Equal(t, 1, r.Level)
		assert.Equal(t, 4, r.Territory)
		assert.Equal(t, ring[i].Lat(), r.Latitude)
		assert.Equal(t, ring[i].Lon(), r.Longitude)
	}
}

func TestBuild_RowCountIsCoordinateCount(t *testing.T) {
	src := &mockSource{features: []domain.RawFeature{
		// open line: ring gains a closing coordinate (4 rows)
		feature(0, "Marne", "EU31", "2020-02-01", 1, 6, orb.LineString{{4, 48}, {4.1, 48.1}, {4.2, 48}}),
		// multi line: 5 positions, closed by a 6th
		feature(1, "Garonne", "FRF", "2021-12-10", 2, 25, orb.MultiLineString{
			{{0.1, 44.1}, {0.2, 44.2}, {0.3, 44.1}},
			{{0.4, 44.0}, {0.2, 43.9}},
		}),
	}}

	ds, metrics, err := build(t, src, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, ds.Len())
	assert.Equal(t, 2, ds.Meta().FeaturesKept)
	assert.InDelta(t, 10.0, testutil.ToFloat64(metrics.RowsBuilt), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.DatasetReady), 1e-9)

	// Each feature's rows start and end on the same coordinate.
	rows := ds.Rows()
	assert.Equal(t, rows[0].Latitude, rows[3].Latitude)
	assert.Equal(t, rows[4].Longitude, rows[9].Longitude)
	assert.Equal(t, 1, rows[4].Feature)
}

func TestBuild_DegenerateGeometryAborts(t *testing.T) {
	src := &mockSource{features: []domain.RawFeature{
		feature(0, "Oise", "EU31", "2013-06-15T10:00:00", 1, 4, orb.LineString{{0, 0}, {1, 0}, {1, 1}}),
		feature(1, "Aisne", "EU31", "2013-06-15T10:00:00", 1, 4, orb.LineString{{0, 0}, {1, 1}, {0, 0}}),
	}}

	ds, metrics, err := build(t, src, 1)
	require.Error(t, err)
	assert.Nil(t, ds)

	var geomErr *domain.GeometryError
	require.ErrorAs(t, err, &geomErr)
	assert.Equal(t, 1, geomErr.Feature)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.BuildFailures), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.DatasetReady), 1e-9)
}

func TestBuild_LoadErrorPropagates(t *testing.T) {
	src := &mockSource{err: &domain.LoadError{Path: "x", Err: domain.ErrNoFeatures}}

	ds, _, err := build(t, src, 1)
	assert.Nil(t, ds)

	var loadErr *domain.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, domain.ErrNoFeatures)
}

func TestBuild_DropNullPolicy(t *testing.T) {
	tri := orb.LineString{{1, 45}, {1.1, 45.1}, {1.2, 45}}

	missingLevel := feature(1, "Loire", "FRG", "2008-11-02", 1, 30, tri)
	missingLevel.Properties.Level = nil
	badDate := feature(2, "Cher", "FRG", "someday", 1, 30, tri)
	nullGeometry := feature(3, "Indre", "FRG", "2008-11-02", 1, 30, nil)

	src := &mockSource{features: []domain.RawFeature{
		feature(0, "Allier", "FRG", "2008-11-02", 2, 30, tri),
		missingLevel,
		badDate,
		nullGeometry,
	}}

	ds, metrics, err := build(t, src, 1)
	require.NoError(t, err)

	meta := ds.Meta()
	assert.Equal(t, 4, meta.FeaturesLoaded)
	assert.Equal(t, 1, meta.FeaturesKept)
	assert.Equal(t, 1, meta.DroppedNullGeometry)
	assert.Equal(t, 1, meta.DroppedNullAttributes)
	assert.Equal(t, 1, meta.DroppedBadDate)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.FeaturesDropped.WithLabelValues(observability.DropBadDate)), 1e-9)

	for _, r := range ds.Rows() {
		assert.Equal(t, "Allier", r.River)
		assert.NotEmpty(t, r.Basin)
		assert.NotZero(t, r.Level)
		assert.NotZero(t, r.Year)
		assert.NotZero(t, r.Month)
	}
}

func TestBuild_EverythingDropped(t *testing.T) {
	src := &mockSource{features: []domain.RawFeature{
		feature(0, "Oise", "EU31", "never", 1, 4, orb.LineString{{0, 0}, {1, 0}, {1, 1}}),
	}}

	ds, _, err := build(t, src, 1)
	assert.Nil(t, ds)
	assert.True(t, errors.Is(err, pipeline.ErrEmptyDataset))
}

func TestBuild_IdempotentExceptColors(t *testing.T) {
	src := &mockSource{features: []domain.RawFeature{
		feature(0, "Oise", "EU31", "2013-06-15T10:00:00", 1, 4, orb.LineString{{3.1, 49.6}, {3.2, 49.7}, {3.3, 49.6}}),
		feature(1, "Garonne", "FRF", "2021-12-10T06:00:00", 2, 25, orb.LineString{{0.1, 44.1}, {0.2, 44.2}, {0.3, 44.1}}),
	}}

	first, _, err := build(t, src, 11)
	require.NoError(t, err)
	second, _, err := build(t, src, 12)
	require.NoError(t, err)

	ignoreColors := cmpopts.IgnoreFields(domain.Row{}, "ColorRiver", "ColorBasin")
	if diff := cmp.Diff(first.Rows(), second.Rows(), ignoreColors); diff != "" {
		t.Fatalf("rebuild mismatch (-first +second):\n%s", diff)
	}

	pinned, _, err := build(t, src, 11)
	require.NoError(t, err)
	if diff := cmp.Diff(first.Rows(), pinned.Rows()); diff != "" {
		t.Fatalf("same seed must reproduce colors (-first +pinned):\n%s", diff)
	}
	assert.NotEqual(t, first.Meta().BuildID, pinned.Meta().BuildID)
}

func TestBuild_StampsMeta(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2023, time.October, 20, 9, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	src := &mockSource{features: []domain.RawFeature{
		feature(0, "Oise", "EU31", "2013-06-15T10:00:00", 1, 4, orb.LineString{{3.1, 49.6}, {3.2, 49.7}, {3.3, 49.6}}),
	}}

	ds, _, err := build(t, src, 77)
	require.NoError(t, err)

	meta := ds.Meta()
	assert.Equal(t, fakeClock.Now(), meta.BuiltAt)
	assert.Equal(t, "InfoVigiCru.geojson", meta.Source)
	assert.Equal(t, uint64(77), meta.ColorSeed)
	assert.Equal(t, 4, meta.Rows)
	assert.NotEmpty(t, meta.BuildID.String())
	assert.Equal(t, 1, src.calls)
}

func TestBuild_FromFile(t *testing.T) {
	const fc = `{"type": "FeatureCollection", "features": [
	  {"type": "Feature",
	   "properties": {"LbEntCru": "Oise amont", "DhCEntCru": "2013-06-15T10:00:00", "NivInfViCr": 1, "CdDiEnt_1": "EU31", "cdensup_1": 4},
	   "geometry": {"type": "MultiLineString", "coordinates": [[[3.1, 49.6], [3.2, 49.7]], [[3.3, 49.6]]]}},
	  {"type": "Feature",
	   "properties": {"LbEntCru": "Aisne", "DhCEntCru": null, "NivInfViCr": 1, "CdDiEnt_1": "EU31", "cdensup_1": 4},
	   "geometry": {"type": "LineString", "coordinates": [[3.5, 49.4], [3.6, 49.5], [3.7, 49.4]]}}
	]}`
	path := filepath.Join(t.TempDir(), "InfoVigiCru.geojson")
	require.NoError(t, os.WriteFile(path, []byte(fc), 0o600))

	metrics := observability.NewMetricsForTesting()
	b := pipeline.New(vigicrues.NewLoader(discardLogger()), discardLogger(), metrics)

	ds, err := b.Build(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, 1, ds.Meta().DroppedNullAttributes)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.FeaturesLoaded), 1e-9)

	_, err = b.Build(filepath.Join(t.TempDir(), "missing.geojson"), 3)
	var loadErr *domain.LoadError
	require.ErrorAs(t, err, &loadErr)
}
