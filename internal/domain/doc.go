// Package domain models the Vigicrues flood-alert (InfoVigiCru) dataset and the
// transformations that turn it into the point-level table the dashboard reads.
//
// # Data Source
//
// The input is a GeoJSON FeatureCollection exported from the Service central
// d'hydrométéorologie et d'appui à la prévision des inondations (SCHAPI). Each
// feature is one monitored river section with the alert raised on it, and a
// line geometry tracing the section.
//
// # Column Conventions
//
// Attribute names are kept as they appear in the export:
//
//	LbEntCru    river (section) name, e.g. "Oise amont"
//	DhCEntCru   alert entry timestamp, e.g. "2013-06-15T10:00:00"
//	NivInfViCr  alert level, an ordinal integer (1 = yellow, 2 = orange, ...)
//	CdDiEnt_1   basin code, e.g. "EU31" (Seine-Normandie)
//	cdensup_1   territory code, an integer (see [TerritoryName])
//
// Columns TypEntCru, StEntCru and TypEnSup_1 are present in the export but
// carry nothing the dashboard uses; the loader does not read them.
//
// # Geometry
//
// Sections are exported as LineString or MultiLineString. The sub-lines are
// concatenated in order and closed into a single polygon ring so every
// coordinate of a section can be listed as a map point. GeoJSON positions are
// [longitude, latitude].
//
// # Row Semantics
//
// The cleaned table has one row per ring coordinate, not one row per alert.
// Any count over rows is therefore a count of coordinate occurrences; use the
// Feature column to count alerts instead.
//
// # Colors
//
// River and basin colors are RGBA tuples sampled uniformly per distinct value
// and rounded to one decimal. Sampling is driven by an explicit seed (see
// [NewPaletteSource]) so a run can be reproduced when the seed is pinned.
package domain
