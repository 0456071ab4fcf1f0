package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/flood-alert-dashboard/internal/dataset"
	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
	"github.com/couchcryptid/flood-alert-dashboard/internal/observability"
)

// ErrEmptyDataset is returned when cleaning leaves no rows to show.
var ErrEmptyDataset = errors.New("no rows left after cleaning")

// FeatureSource reads the raw feature collection.
type FeatureSource interface {
	Load(path string) ([]domain.RawFeature, error)
}

// Builder runs the data-preparation stages once and produces the cleaned dataset.
type Builder struct {
	source  FeatureSource
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Builder reading from source.
func New(source FeatureSource, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		source:  source,
		logger:  logger,
		metrics: metrics,
	}
}

// Build loads the file at path and runs normalize, clean, enrich, extract and
// assemble in that order. A load or geometry failure aborts the build and no
// dataset is returned; features dropped under the null policy or for an
// unparseable timestamp are logged and counted.
func (b *Builder) Build(path string, colorSeed uint64) (*dataset.Dataset, error) {
	start := time.Now()

	ds, err := b.build(path, colorSeed)
	if err != nil {
		b.metrics.BuildFailures.Inc()
		b.metrics.DatasetReady.Set(0)
		b.logger.Error("dataset build failed", "path", path, "error", err)
		return nil, err
	}

	b.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	b.metrics.RowsBuilt.Set(float64(ds.Len()))
	b.metrics.DatasetReady.Set(1)

	meta := ds.Meta()
	b.logger.Info("dataset built",
		"build_id", meta.BuildID,
		"features_loaded", meta.FeaturesLoaded,
		"features_kept", meta.FeaturesKept,
		"rows", meta.Rows,
		"color_seed", meta.ColorSeed,
		"duration", time.Since(start),
	)
	return ds, nil
}

func (b *Builder) build(path string, colorSeed uint64) (*dataset.Dataset, error) {
	raw, err := b.source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	b.metrics.FeaturesLoaded.Add(float64(len(raw)))

	withGeometry, nullGeometry := dropNullGeometry(raw)
	b.recordDrops(observability.DropNullGeometry, nullGeometry)

	normalized, err := domain.NormalizeFeatures(withGeometry)
	if err != nil {
		return nil, fmt.Errorf("normalize geometry: %w", err)
	}

	clean, nullAttributes, dateErrs := domain.CleanFeatures(normalized)
	b.recordDrops(observability.DropNullAttributes, nullAttributes)
	b.recordDrops(observability.DropBadDate, len(dateErrs))
	for _, err := range dateErrs {
		b.logger.Warn("alert timestamp unparseable, dropping feature", "error", err)
	}

	enriched := domain.EnrichFeatures(clean, colorSeed)
	points := domain.ExtractPoints(clean)
	rows := domain.Assemble(enriched, points)
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	b.logger.Debug("dataset stages complete",
		"normalized", len(normalized),
		"clean", len(clean),
		"points", len(points),
	)

	return dataset.New(rows, dataset.Meta{
		BuildID:               uuid.New(),
		BuiltAt:               domain.Now(),
		Source:                path,
		ColorSeed:             colorSeed,
		FeaturesLoaded:        len(raw),
		FeaturesKept:          len(clean),
		DroppedNullGeometry:   nullGeometry,
		DroppedNullAttributes: nullAttributes,
		DroppedBadDate:        len(dateErrs),
	}), nil
}

func (b *Builder) recordDrops(reason string, n int) {
	if n == 0 {
		return
	}
	b.metrics.FeaturesDropped.WithLabelValues(reason).Add(float64(n))
	b.logger.Info("features dropped", "reason", reason, "count", n)
}
