// Package dashboard computes the data behind each dashboard page from the
// cleaned dataset. Queries never modify the dataset.
//
// Counts are row counts, i.e. ring-coordinate occurrences, not alert counts.
// A long river section weighs more than a short one.
package dashboard

import (
	"errors"
	"fmt"
	"slices"

	"github.com/couchcryptid/flood-alert-dashboard/internal/dataset"
	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
)

// Year range offered by the page selectors.
const (
	FirstYear = 2006
	LastYear  = 2023
)

// Map zoom levels used by the density maps.
const (
	generalMapZoom   = 5
	territoryMapZoom = 7
)

var (
	// ErrUnknownBasin is returned when a basin name is not in the basin table.
	ErrUnknownBasin = errors.New("unknown basin")
	// ErrUnknownTerritory is returned when a territory name is not in the territory table.
	ErrUnknownTerritory = errors.New("unknown territory")
)

// Share is one slice of a pie chart.
type Share struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MapPoint is one colored point of a scatter map.
type MapPoint struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Size      int          `json:"size"`
	Color     domain.Color `json:"color"`
}

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Density is the input of a density map: the points, their mean position, and
// a zoom level. Center is nil when no row matched.
type Density struct {
	Points []Coordinate `json:"points"`
	Center *Coordinate  `json:"center"`
	Zoom   int          `json:"zoom"`
}

// Options lists the values the page selectors offer.
type Options struct {
	FirstYear   int      `json:"first_year"`
	LastYear    int      `json:"last_year"`
	Levels      []int    `json:"levels"`
	Basins      []string `json:"basins"`
	Territories []string `json:"territories"`
}

// SelectorOptions returns the selector values. Levels are listed in order of
// first appearance in the dataset; basins and territories in table order.
func SelectorOptions(ds *dataset.Dataset) Options {
	var levels []int
	ds.Each(func(r domain.Row) {
		if !slices.Contains(levels, r.Level) {
			levels = append(levels, r.Level)
		}
	})

	var basins []string
	for _, b := range domain.Basins() {
		basins = append(basins, b.Name)
	}
	var territories []string
	for _, t := range domain.Territories() {
		territories = append(territories, t.Name)
	}

	return Options{
		FirstYear:   FirstYear,
		LastYear:    LastYear,
		Levels:      levels,
		Basins:      basins,
		Territories: territories,
	}
}

func basinCodes(name string) ([]string, error) {
	codes := domain.BasinCodes(name)
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBasin, name)
	}
	return codes, nil
}

func territoryCodes(name string) ([]int, error) {
	codes := domain.TerritoryCodes(name)
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTerritory, name)
	}
	return codes, nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func density(rows []domain.Row, zoom int) Density {
	d := Density{Points: make([]Coordinate, 0, len(rows)), Zoom: zoom}
	if len(rows) == 0 {
		return d
	}

	var sumLat, sumLon float64
	for _, r := range rows {
		d.Points = append(d.Points, Coordinate{Latitude: r.Latitude, Longitude: r.Longitude})
		sumLat += r.Latitude
		sumLon += r.Longitude
	}
	n := float64(len(rows))
	d.Center = &Coordinate{Latitude: sumLat / n, Longitude: sumLon / n}
	return d
}
