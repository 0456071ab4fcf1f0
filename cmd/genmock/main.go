// Command genmock writes a synthetic InfoVigiCru feature collection for local
// runs and tests, then builds it with the real pipeline and prints the counts
// test assertions depend on.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/InfoVigiCru.geojson \
//	  -features 200 \
//	  -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/flood-alert-dashboard/internal/adapter/vigicrues"
	"github.com/couchcryptid/flood-alert-dashboard/internal/dashboard"
	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
	"github.com/couchcryptid/flood-alert-dashboard/internal/observability"
	"github.com/couchcryptid/flood-alert-dashboard/internal/pipeline"
)

// basinAnchor places generated river sections roughly inside each district.
type basinAnchor struct {
	code        string
	lat, lon    float64
	rivers      []string
	territories []int
}

// Territory 40 is not in the label table and is displayed as its number.
var anchors = []basinAnchor{
	{"FRF", 44.3, 0.5, []string{"Garonne", "Tarn", "Lot", "Dordogne", "Adour"}, []int{25, 32}},
	{"EU35", 45.2, 4.9, []string{"Rhône", "Saône", "Isère", "Durance", "Écoutay"}, []int{18, 19, 20}},
	{"FRG", 47.3, 1.0, []string{"Loire", "Allier", "Cher", "Vienne", "Indre"}, []int{30, 31, 9}},
	{"EU31", 49.0, 2.5, []string{"Seine", "Oise", "Marne", "Epte", "Aisne"}, []int{4, 6, 7}},
	{"EU36", 48.5, 7.5, []string{"Ill", "Moselle", "Sarre"}, []int{3}},
	{"EU3", 49.5, 5.0, []string{"Meuse", "Chiers"}, []int{2}},
	{"EU33", 50.3, 2.8, []string{"Scarpe", "Lys", "Aa"}, []int{29}},
	{"FRL", -21.1, 55.5, []string{"Rivière des Galets", "Rivière Saint-Étienne"}, []int{40}},
}

const (
	firstYear = 2006
	lastYear  = 2023
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated GeoJSON")
	n := flag.Int("features", 200, "number of features to generate")
	seed := flag.Uint64("seed", 1, "generator seed")
	nullRate := flag.Float64("null-rate", 0.05, "fraction of features with a missing attribute")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -features > 0")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	fc := geojson.NewFeatureCollection()
	for i := 0; i < *n; i++ {
		fc.Append(generateFeature(rng, *nullRate))
	}

	if err := writeJSON(*out, fc); err != nil {
		return fmt.Errorf("writing feature collection: %w", err)
	}
	log.Printf("wrote %d features: %s", *n, *out)

	return printStats(*out, *seed)
}

func generateFeature(rng *rand.Rand, nullRate float64) *geojson.Feature {
	a := anchors[rng.IntN(len(anchors))]

	f := geojson.NewFeature(generateGeometry(rng, a))
	f.Properties["LbEntCru"] = a.rivers[rng.IntN(len(a.rivers))]
	f.Properties["DhCEntCru"] = generateTimestamp(rng)
	f.Properties["NivInfViCr"] = float64(1 + rng.IntN(4))
	f.Properties["CdDiEnt_1"] = a.code
	f.Properties["cdensup_1"] = float64(a.territories[rng.IntN(len(a.territories))])

	if rng.Float64() < nullRate {
		keys := []string{"LbEntCru", "DhCEntCru", "NivInfViCr", "CdDiEnt_1", "cdensup_1"}
		f.Properties[keys[rng.IntN(len(keys))]] = nil
	}
	return f
}

// generateGeometry returns an open river section as a random walk from the
// basin anchor. About one feature in five is split into two parts.
func generateGeometry(rng *rand.Rand, a basinAnchor) orb.Geometry {
	walk := func(start orb.Point, steps int) orb.LineString {
		ls := orb.LineString{start}
		p := start
		for j := 1; j < steps; j++ {
			p = orb.Point{p.Lon() + (rng.Float64()-0.3)*0.05, p.Lat() + (rng.Float64()-0.5)*0.05}
			ls = append(ls, p)
		}
		return ls
	}

	start := orb.Point{a.lon + (rng.Float64()-0.5)*2, a.lat + (rng.Float64()-0.5)*2}
	first := walk(start, 3+rng.IntN(5))
	if rng.IntN(5) > 0 {
		return first
	}
	second := walk(first[len(first)-1], 2+rng.IntN(3))
	return orb.MultiLineString{first, second[1:]}
}

// generateTimestamp alternates between the ISO layout and epoch milliseconds,
// the two encodings seen in exports.
func generateTimestamp(rng *rand.Rand) string {
	year := firstYear + rng.IntN(lastYear-firstYear+1)
	t := time.Date(year, time.Month(1+rng.IntN(12)), 1+rng.IntN(28), rng.IntN(24), rng.IntN(60), 0, 0, time.UTC)
	if rng.IntN(2) == 0 {
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return t.Format("2006-01-02T15:04:05")
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(path string, seed uint64) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	builder := pipeline.New(vigicrues.NewLoader(logger), logger, observability.NewMetricsForTesting())

	ds, err := builder.Build(path, seed)
	if err != nil {
		return fmt.Errorf("building generated file: %w", err)
	}
	meta := ds.Meta()

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Features: loaded=%d kept=%d\n", meta.FeaturesLoaded, meta.FeaturesKept)
	fmt.Printf("Dropped: null_geometry=%d null_attributes=%d bad_date=%d\n",
		meta.DroppedNullGeometry, meta.DroppedNullAttributes, meta.DroppedBadDate)
	fmt.Printf("Rows: %d\n", meta.Rows)

	fmt.Println("\nRows by basin:")
	for _, s := range dashboard.BasinShares(ds) {
		fmt.Printf("  %-20s %5d (%.1f%%)\n", s.Label, s.Count, s.Percent)
	}

	fmt.Printf("\nRows by level in %d:\n", firstYear)
	for _, c := range dashboard.LevelCounts(ds, firstYear) {
		fmt.Printf("  level %d: %d\n", c.Level, c.Count)
	}

	fmt.Printf("\nLevels seen: %v\n", dashboard.SelectorOptions(ds).Levels)
	fmt.Printf("Distinct rivers: %d\n", countRivers(ds.Rows()))
	return nil
}

func countRivers(rows []domain.Row) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.River] = struct{}{}
	}
	return len(seen)
}
