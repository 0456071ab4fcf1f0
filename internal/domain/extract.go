package domain

// ExtractPoints lists every boundary coordinate of every feature as a
// PointRecord, in feature order and then ring order. The closing coordinate of
// a ring is emitted like any other, so a feature yields len(ring) records.
func ExtractPoints(features []CleanFeature) []PointRecord {
	n := 0
	for _, f := range features {
		n += len(f.Ring())
	}

	out := make([]PointRecord, 0, n)
	for _, f := range features {
		for _, p := range f.Ring() {
			out = append(out, PointRecord{
				Feature:   f.Index,
				Latitude:  p.Lat(),
				Longitude: p.Lon(),
				Alert:     f.Alert,
			})
		}
	}
	return out
}

// Assemble joins enriched feature attributes onto their point records and
// numbers the rows from zero. Points whose feature is not in enriched are
// skipped.
func Assemble(enriched []EnrichedFeature, points []PointRecord) []Row {
	byIndex := make(map[int]EnrichedFeature, len(enriched))
	for _, f := range enriched {
		byIndex[f.Index] = f
	}

	rows := make([]Row, 0, len(points))
	for _, p := range points {
		f, ok := byIndex[p.Feature]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			Index:       len(rows),
			PointRecord: p,
			Year:        f.Year,
			Month:       f.Month,
			ColorRiver:  f.ColorRiver,
			ColorBasin:  f.ColorBasin,
		})
	}
	return rows
}
