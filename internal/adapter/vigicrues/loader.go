package vigicrues

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
)

// Property names read from the InfoVigiCru export.
const (
	propRiver     = "LbEntCru"
	propAlertTime = "DhCEntCru"
	propLevel     = "NivInfViCr"
	propBasin     = "CdDiEnt_1"
	propTerritory = "cdensup_1"
)

// Loader reads an InfoVigiCru feature collection from disk.
// It implements pipeline.FeatureSource.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the whole file and returns its features in file order. It fails
// with a *domain.LoadError when the file is missing, is not a GeoJSON
// FeatureCollection, or holds no features.
func (l *Loader) Load(path string) ([]domain.RawFeature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("decode feature collection: %w", err)}
	}
	if fc.Type != "FeatureCollection" {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("not a feature collection: type=%q", fc.Type)}
	}
	if len(fc.Features) == 0 {
		return nil, &domain.LoadError{Path: path, Err: domain.ErrNoFeatures}
	}

	features := make([]domain.RawFeature, len(fc.Features))
	for i, f := range fc.Features {
		features[i] = domain.RawFeature{
			Index:      i,
			Properties: mapProperties(f.Properties),
			Geometry:   f.Geometry,
		}
	}

	l.logger.Debug("feature collection read", "path", path, "features", len(features), "bytes", len(data))
	return features, nil
}

func mapProperties(p geojson.Properties) domain.Properties {
	return domain.Properties{
		River:     stringProp(p, propRiver),
		AlertTime: stringProp(p, propAlertTime),
		Level:     intProp(p, propLevel),
		Basin:     stringProp(p, propBasin),
		Territory: intProp(p, propTerritory),
	}
}

// stringProp returns a trimmed string property. Numbers are formatted in
// decimal; null, empty, and other JSON types count as missing.
func stringProp(p geojson.Properties, key string) *string {
	var s string
	switch v := p[key].(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

// intProp returns an integer property given as a JSON number or a numeric
// string. Fractional values and non-numeric strings count as missing.
func intProp(p geojson.Properties, key string) *int {
	switch v := p[key].(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil
		}
		n := int(v)
		return &n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}
