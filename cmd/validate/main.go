// Command validate builds a cleaned dataset from an InfoVigiCru file and checks
// the properties the dashboard relies on: ring closure per feature, the
// drop-null policy, contiguous row numbering, color palette consistency, and
// that two builds differ only in their colors.
//
// Usage:
//
//	go run ./cmd/validate -data data/InfoVigiCru.geojson -seed 7
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-alert-dashboard/internal/adapter/vigicrues"
	"github.com/couchcryptid/flood-alert-dashboard/internal/dataset"
	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
	"github.com/couchcryptid/flood-alert-dashboard/internal/observability"
	"github.com/couchcryptid/flood-alert-dashboard/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrorsPerPhase caps the detailed report; the count is always exact.
const maxErrorsPerPhase = 20

func main() {
	dataPath := flag.String("data", "", "path to the InfoVigiCru GeoJSON file")
	seed := flag.Uint64("seed", 1, "color seed of the first build")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath, *seed); code != 0 {
		os.Exit(code)
	}
}

func run(dataPath string, seed uint64) int {
	// Fixed clock so both builds carry the same BuiltAt.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Flood Alert Dataset Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := vigicrues.NewLoader(logger)

	raw, err := loader.Load(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", dataPath, err)
		return 1
	}

	builder := pipeline.New(loader, logger, observability.NewMetricsForTesting())
	first, err := builder.Build(dataPath, seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: build: %v\n", err)
		return 1
	}
	second, err := builder.Build(dataPath, seed+1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: second build: %v\n", err)
		return 1
	}
	again, err := builder.Build(dataPath, seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: repeated build: %v\n", err)
		return 1
	}

	rows := first.Rows()
	phases := []*phase{
		validateRings(rows, raw),
		validateDropPolicy(rows, first.Meta()),
		validateNumbering(rows),
		validatePalettes(rows),
		validateIdempotence(first, second),
		validateReproducibility(first, again),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	meta := first.Meta()
	fmt.Println()
	fmt.Printf("Features: %d loaded, %d kept (dropped: %d null geometry, %d null attributes, %d bad date)\n",
		meta.FeaturesLoaded, meta.FeaturesKept, meta.DroppedNullGeometry, meta.DroppedNullAttributes, meta.DroppedBadDate)
	fmt.Printf("Rows: %d\n", meta.Rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrorsPerPhase {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxErrorsPerPhase)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// groupByFeature returns the rows of each feature in row order, plus the
// feature indices in order of first appearance.
func groupByFeature(rows []domain.Row) (map[int][]domain.Row, []int) {
	groups := make(map[int][]domain.Row)
	var order []int
	for _, r := range rows {
		if _, ok := groups[r.Feature]; !ok {
			order = append(order, r.Feature)
		}
		groups[r.Feature] = append(groups[r.Feature], r)
	}
	return groups, order
}

// ── Phase 1: Ring closure ──
// Every feature's rows trace a closed ring matching its normalized geometry.

func validateRings(rows []domain.Row, raw []domain.RawFeature) *phase {
	p := &phase{name: "Phase 1: Ring closure"}
	groups, order := groupByFeature(rows)

	for _, idx := range order {
		g := groups[idx]
		if len(g) < 4 {
			p.errorf("feature %d: %d rows, a closed ring needs at least 4", idx, len(g))
			continue
		}
		first, last := g[0], g[len(g)-1]
		if first.Latitude != last.Latitude || first.Longitude != last.Longitude {
			p.errorf("feature %d: ring not closed: (%g,%g) != (%g,%g)",
				idx, first.Latitude, first.Longitude, last.Latitude, last.Longitude)
		}

		if idx < 0 || idx >= len(raw) {
			p.errorf("feature %d: index outside the %d loaded features", idx, len(raw))
			continue
		}
		nf, err := domain.NormalizeFeature(raw[idx])
		if err != nil {
			p.errorf("feature %d: re-normalize: %v", idx, err)
			continue
		}
		if ring := nf.Ring(); len(ring) != len(g) {
			p.errorf("feature %d: %d rows for a ring of %d coordinates", idx, len(g), len(ring))
		}
	}
	return p
}

// ── Phase 2: Drop-null policy ──

func validateDropPolicy(rows []domain.Row, meta dataset.Meta) *phase {
	p := &phase{name: "Phase 2: Drop-null policy"}

	for _, r := range rows {
		if r.River == "" {
			p.errorf("row %d: empty river", r.Index)
		}
		if r.Basin == "" {
			p.errorf("row %d: empty basin", r.Index)
		}
		if r.AlertTime.IsZero() {
			p.errorf("row %d: zero alert time", r.Index)
		}
		if r.Year != r.AlertTime.Year() || r.Month != int(r.AlertTime.Month()) {
			p.errorf("row %d: Year/Month %d/%d do not match alert time %s",
				r.Index, r.Year, r.Month, r.AlertTime.Format(time.RFC3339))
		}
	}

	dropped := meta.DroppedNullGeometry + meta.DroppedNullAttributes + meta.DroppedBadDate
	if meta.FeaturesKept+dropped != meta.FeaturesLoaded {
		p.errorf("kept %d + dropped %d != loaded %d", meta.FeaturesKept, dropped, meta.FeaturesLoaded)
	}
	if _, order := groupByFeature(rows); len(order) != meta.FeaturesKept {
		p.errorf("rows cover %d features, meta reports %d kept", len(order), meta.FeaturesKept)
	}
	return p
}

// ── Phase 3: Row numbering ──

func validateNumbering(rows []domain.Row) *phase {
	p := &phase{name: "Phase 3: Contiguous row index"}
	for i, r := range rows {
		if r.Index != i {
			p.errorf("row at position %d has index %d", i, r.Index)
		}
	}
	return p
}

// ── Phase 4: Palettes ──
// One color per river and per basin, each component in [0,1] at one decimal.

func validatePalettes(rows []domain.Row) *phase {
	p := &phase{name: "Phase 4: Color palettes"}
	rivers := make(map[string]domain.Color)
	basins := make(map[string]domain.Color)

	for _, r := range rows {
		checkPalette(p, "river", r.River, r.ColorRiver, rivers, r.Index)
		checkPalette(p, "basin", r.Basin, r.ColorBasin, basins, r.Index)
	}
	return p
}

func checkPalette(p *phase, kind, value string, c domain.Color, seen map[string]domain.Color, row int) {
	if prev, ok := seen[value]; ok && prev != c {
		p.errorf("row %d: %s %q has color %v, earlier rows have %v", row, kind, value, c, prev)
	}
	seen[value] = c

	for _, v := range c {
		if v < 0 || v > 1 || math.Abs(v*10-math.Round(v*10)) > 1e-9 {
			p.errorf("row %d: %s color component %g is not a one-decimal value in [0,1]", row, kind, v)
			return
		}
	}
}

// ── Phase 5: Idempotence ──
// Builds with different seeds agree on everything but colors and build identity.

var ignoreColors = cmpopts.IgnoreFields(domain.Row{}, "ColorRiver", "ColorBasin")

func validateIdempotence(a, b *dataset.Dataset) *phase {
	p := &phase{name: "Phase 5: Idempotence (ignoring colors)"}

	if diff := cmp.Diff(a.Rows(), b.Rows(), ignoreColors); diff != "" {
		p.errorf("rows differ between builds (-first +second):\n%s", diff)
	}

	ignoreBuild := cmpopts.IgnoreFields(dataset.Meta{}, "BuildID", "ColorSeed")
	if diff := cmp.Diff(a.Meta(), b.Meta(), ignoreBuild); diff != "" {
		p.errorf("meta differs between builds (-first +second):\n%s", diff)
	}
	return p
}

// ── Phase 6: Reproducibility ──

func validateReproducibility(a, b *dataset.Dataset) *phase {
	p := &phase{name: "Phase 6: Same seed, same colors"}
	if diff := cmp.Diff(a.Rows(), b.Rows()); diff != "" {
		p.errorf("rows differ for the same seed (-first +repeat):\n%s", diff)
	}
	return p
}
