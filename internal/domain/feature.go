package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// Properties holds the attributes of a feature as read from the export.
// A nil field means the property was missing, null, or empty.
type Properties struct {
	River     *string
	AlertTime *string
	Level     *int
	Basin     *string
	Territory *int
}

// Complete reports whether every attribute is present.
func (p Properties) Complete() bool {
	return p.River != nil && p.AlertTime != nil && p.Level != nil && p.Basin != nil && p.Territory != nil
}

// RawFeature is one record of the feature collection in file order.
type RawFeature struct {
	Index      int
	Properties Properties
	Geometry   orb.Geometry // nil when the geometry is null in the file
}

// NormalizedFeature is a RawFeature whose line geometry was closed into a polygon.
type NormalizedFeature struct {
	Index      int
	Properties Properties
	Polygon    orb.Polygon
}

// Ring returns the boundary ring of the feature polygon.
func (f NormalizedFeature) Ring() orb.Ring {
	if len(f.Polygon) == 0 {
		return nil
	}
	return f.Polygon[0]
}

// Alert is the non-null attribute set of a feature after cleaning.
type Alert struct {
	River     string    `json:"LbEntCru"`
	AlertTime time.Time `json:"DhCEntCru"`
	Level     int       `json:"NivInfViCr"`
	Basin     string    `json:"CdDiEnt_1"`
	Territory int       `json:"cdensup_1"`
}

// CleanFeature is a normalized feature that passed the drop-null policy and
// whose timestamp parsed.
type CleanFeature struct {
	Index   int
	Alert   Alert
	Polygon orb.Polygon
}

// Ring returns the boundary ring of the feature polygon.
func (f CleanFeature) Ring() orb.Ring {
	if len(f.Polygon) == 0 {
		return nil
	}
	return f.Polygon[0]
}

// Color is an RGBA tuple with components in [0, 1].
type Color [4]float64

// EnrichedFeature adds the derived date parts and palette colors.
type EnrichedFeature struct {
	CleanFeature
	Year       int
	Month      int
	ColorRiver Color
	ColorBasin Color
}

// PointRecord is one ring coordinate together with the attributes of its feature.
type PointRecord struct {
	Feature   int     `json:"feature"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Alert
}

// Row is one line of the cleaned dataset.
type Row struct {
	Index int `json:"index"`
	PointRecord
	Year       int   `json:"Year"`
	Month      int   `json:"Month"`
	ColorRiver Color `json:"Color_river"`
	ColorBasin Color `json:"Color_basin"`
}
