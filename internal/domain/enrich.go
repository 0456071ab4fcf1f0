package domain

import (
	"math"
	"math/rand/v2"
)

// Palette maps a categorical value to its color.
type Palette map[string]Color

// Lookup returns the color of value, or the zero color when it has none.
func (p Palette) Lookup(value string) Color {
	return p[value]
}

// NewPaletteSource returns the generator palettes are sampled from. The same
// seed always yields the same sequence of colors.
func NewPaletteSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AssignPalette samples one color per distinct value, visiting values in order
// of first appearance so a given seed and input produce the same mapping.
func AssignPalette(values []string, rng *rand.Rand) Palette {
	p := make(Palette)
	for _, v := range values {
		if _, ok := p[v]; ok {
			continue
		}
		p[v] = sampleColor(rng)
	}
	return p
}

// sampleColor draws four uniform components and rounds each to one decimal.
func sampleColor(rng *rand.Rand) Color {
	var c Color
	for i := range c {
		c[i] = math.Round(rng.Float64()*10) / 10
	}
	return c
}

// EnrichFeatures derives Year and Month from the alert timestamp and assigns
// river and basin colors. The river palette is sampled first, then the basin
// palette, both from one generator seeded with seed.
func EnrichFeatures(features []CleanFeature, seed uint64) []EnrichedFeature {
	rivers := make([]string, len(features))
	basins := make([]string, len(features))
	for i, f := range features {
		rivers[i] = f.Alert.River
		basins[i] = f.Alert.Basin
	}

	rng := NewPaletteSource(seed)
	riverColors := AssignPalette(rivers, rng)
	basinColors := AssignPalette(basins, rng)

	out := make([]EnrichedFeature, len(features))
	for i, f := range features {
		out[i] = EnrichedFeature{
			CleanFeature: f,
			Year:         f.Alert.AlertTime.Year(),
			Month:        int(f.Alert.AlertTime.Month()),
			ColorRiver:   riverColors.Lookup(f.Alert.River),
			ColorBasin:   basinColors.Lookup(f.Alert.Basin),
		}
	}
	return out
}
