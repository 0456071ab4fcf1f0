package domain

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// minRingPoints is the number of distinct positions a ring needs to bound an area.
const minRingPoints = 3

// NormalizeFeature closes the line geometry of a feature into a one-ring polygon.
// Sub-lines are concatenated in order; the ring is closed by repeating the first
// position when the last one differs. It returns a GeometryError when the
// geometry is not a line or has fewer than three distinct positions.
func NormalizeFeature(f RawFeature) (NormalizedFeature, error) {
	points, err := flattenLines(f.Geometry)
	if err != nil {
		return NormalizedFeature{}, &GeometryError{Feature: f.Index, Reason: err.Error()}
	}

	if n := countDistinct(points); n < minRingPoints {
		return NormalizedFeature{}, &GeometryError{
			Feature: f.Index,
			Reason:  fmt.Sprintf("ring needs %d distinct points, got %d", minRingPoints, n),
		}
	}

	ring := orb.Ring(points)
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}

	return NormalizedFeature{
		Index:      f.Index,
		Properties: f.Properties,
		Polygon:    orb.Polygon{ring},
	}, nil
}

// NormalizeFeatures normalizes every feature in order and stops at the first
// GeometryError: a degenerate geometry invalidates the whole dataset.
func NormalizeFeatures(features []RawFeature) ([]NormalizedFeature, error) {
	out := make([]NormalizedFeature, 0, len(features))
	for _, f := range features {
		nf, err := NormalizeFeature(f)
		if err != nil {
			return nil, err
		}
		out = append(out, nf)
	}
	return out, nil
}

// flattenLines concatenates the positions of a line geometry into a fresh slice.
func flattenLines(g orb.Geometry) ([]orb.Point, error) {
	switch g := g.(type) {
	case orb.LineString:
		out := make([]orb.Point, len(g), len(g)+1)
		copy(out, g)
		return out, nil
	case orb.MultiLineString:
		n := 0
		for _, ls := range g {
			n += len(ls)
		}
		out := make([]orb.Point, 0, n+1)
		for _, ls := range g {
			out = append(out, ls...)
		}
		return out, nil
	case nil:
		return nil, errors.New("geometry is null")
	default:
		return nil, fmt.Errorf("unsupported geometry type %s", g.GeoJSONType())
	}
}

func countDistinct(points []orb.Point) int {
	seen := make(map[orb.Point]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}
