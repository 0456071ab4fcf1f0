package domain

import (
	"slices"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Basin is a hydrographic district (CdDiEnt_1) and its display name.
type Basin struct {
	Code string
	Name string
}

// Territory is a flood-forecasting territory (cdensup_1) and its display name.
type Territory struct {
	Code int
	Name string
}

var basins = []Basin{
	{"FRF", "Adour-Garonne"},
	{"EU35", "Rhône-Méditerranée"},
	{"FRG", "Loire-Bretagne"},
	{"EU31", "Seine-Normandie"},
	{"EU36", "Rhin"},
	{"EU3", "Meuse"},
	{"EU33", "Artois-Picardie"},
	{"FRL", "Réunion"},
}

var territories = []Territory{
	{30, "Loire-Allier-Cher-Indre"},
	{32, "Gironde-Adour-Dordogne"},
	{31, "Vienne-Charente-Atlantique"},
	{25, "Garonne-Tarn-Lot"},
	{18, "Rhône amont-Saône"},
	{20, "Grand Delta"},
	{29, "Bassins du Nord"},
	{4, "Seine aval-Côtiers Normands"},
	{2, "Meuse-Moselle"},
	{7, "Seine moyenne-Yonne-Loing"},
	{21, "Méditerranée Ouest"},
	{3, "Rhin-Sarre"},
	{9, "Maine-Loire aval"},
	{8, "Vilaine-Côtiers Bretons"},
	{19, "Alpes du Nord"},
	{6, "Seine amont-Marne amont"},
	{22, "Méditerranée Est (bassin continental)"},
	{26, "Méditerranée Est (bassin Corse)"},
}

// Basins returns the basin table in display order.
func Basins() []Basin { return slices.Clone(basins) }

// Territories returns the territory table in display order.
func Territories() []Territory { return slices.Clone(territories) }

// BasinName returns the display name of a basin code, or the code itself when unknown.
func BasinName(code string) string {
	for _, b := range basins {
		if b.Code == code {
			return b.Name
		}
	}
	return code
}

// BasinCodes returns the codes whose display name is name.
func BasinCodes(name string) []string {
	var codes []string
	for _, b := range basins {
		if b.Name == name {
			codes = append(codes, b.Code)
		}
	}
	return codes
}

// TerritoryName returns the display name of a territory code, or the code in
// decimal when unknown.
func TerritoryName(code int) string {
	for _, t := range territories {
		if t.Code == code {
			return t.Name
		}
	}
	return strconv.Itoa(code)
}

// TerritoryCodes returns the codes whose display name is name.
func TerritoryCodes(name string) []int {
	var codes []int
	for _, t := range territories {
		if t.Name == name {
			codes = append(codes, t.Code)
		}
	}
	return codes
}

// SortLabels sorts labels in place using French collation, so accented names
// such as "Rhône" sort next to "Rhin" rather than after "Z".
func SortLabels(labels []string) {
	collate.New(language.French).SortStrings(labels)
}
