// Package dataset holds the cleaned flood-alert table. A Dataset is built once
// per process and never changes afterwards; every accessor hands out copies.
package dataset

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
)

// Meta describes how a dataset was built.
type Meta struct {
	BuildID   uuid.UUID `json:"build_id"`
	BuiltAt   time.Time `json:"built_at"`
	Source    string    `json:"source"`
	ColorSeed uint64    `json:"color_seed"`

	FeaturesLoaded        int `json:"features_loaded"`
	FeaturesKept          int `json:"features_kept"`
	DroppedNullGeometry   int `json:"dropped_null_geometry"`
	DroppedNullAttributes int `json:"dropped_null_attributes"`
	DroppedBadDate        int `json:"dropped_bad_date"`
	Rows                  int `json:"rows"`
}

// Dataset is the immutable cleaned table.
type Dataset struct {
	rows []domain.Row
	meta Meta
}

// New wraps rows in a Dataset. The rows are copied, so later changes to the
// argument do not reach the dataset. Meta.Rows is set from len(rows).
func New(rows []domain.Row, meta Meta) *Dataset {
	meta.Rows = len(rows)
	return &Dataset{rows: slices.Clone(rows), meta: meta}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Meta returns the build metadata.
func (d *Dataset) Meta() Meta { return d.meta }

// Row returns row i.
func (d *Dataset) Row(i int) (domain.Row, bool) {
	if i < 0 || i >= len(d.rows) {
		return domain.Row{}, false
	}
	return d.rows[i], true
}

// Rows returns a copy of all rows in index order.
func (d *Dataset) Rows() []domain.Row {
	return slices.Clone(d.rows)
}

// Filter returns copies of the rows for which keep returns true, in index order.
func (d *Dataset) Filter(keep func(domain.Row) bool) []domain.Row {
	var out []domain.Row
	for _, r := range d.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Each calls fn for every row in index order. fn receives a copy.
func (d *Dataset) Each(fn func(domain.Row)) {
	for _, r := range d.rows {
		fn(r)
	}
}

// CheckReadiness reports whether the dataset can back the dashboard.
func (d *Dataset) CheckReadiness(_ context.Context) error {
	if d == nil || len(d.rows) == 0 {
		return errors.New("dataset is not available")
	}
	return nil
}
