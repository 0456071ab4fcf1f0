package dashboard

import (
	"cmp"
	"slices"

	"github.com/couchcryptid/flood-alert-dashboard/internal/dataset"
	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
)

// Introduction is the data of the "General introduction" page.
type Introduction struct {
	Rows        int        `json:"rows"`
	BasinShares []Share    `json:"basin_shares"`
	RiverShares []Share    `json:"river_shares"`
	RiverLayer  []MapPoint `json:"river_layer"`
	BasinLayer  []MapPoint `json:"basin_layer"`
}

// IntroductionPage builds the introduction page.
func IntroductionPage(ds *dataset.Dataset) Introduction {
	rows := ds.Rows()

	river := make([]MapPoint, len(rows))
	basin := make([]MapPoint, len(rows))
	for i, r := range rows {
		river[i] = MapPoint{Latitude: r.Latitude, Longitude: r.Longitude, Size: r.Level, Color: r.ColorRiver}
		basin[i] = MapPoint{Latitude: r.Latitude, Longitude: r.Longitude, Size: r.Level, Color: r.ColorBasin}
	}

	return Introduction{
		Rows:        len(rows),
		BasinShares: BasinShares(ds),
		RiverShares: UniqueRiversByBasin(ds),
		RiverLayer:  river,
		BasinLayer:  basin,
	}
}

// BasinShares counts rows per basin code, most frequent first. Ties keep the
// order in which basins first appear.
func BasinShares(ds *dataset.Dataset) []Share {
	var order []string
	counts := make(map[string]int)
	ds.Each(func(r domain.Row) {
		if _, ok := counts[r.Basin]; !ok {
			order = append(order, r.Basin)
		}
		counts[r.Basin]++
	})

	shares := make([]Share, 0, len(order))
	for _, code := range order {
		shares = append(shares, Share{
			Key:     code,
			Label:   domain.BasinName(code),
			Count:   counts[code],
			Percent: percent(counts[code], ds.Len()),
		})
	}
	slices.SortStableFunc(shares, func(a, b Share) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return shares
}

// UniqueRiversByBasin counts distinct river names per basin code, ordered by
// basin code. Percent is relative to the sum of the per-basin counts.
func UniqueRiversByBasin(ds *dataset.Dataset) []Share {
	rivers := make(map[string]map[string]struct{})
	ds.Each(func(r domain.Row) {
		set, ok := rivers[r.Basin]
		if !ok {
			set = make(map[string]struct{})
			rivers[r.Basin] = set
		}
		set[r.River] = struct{}{}
	})

	codes := make([]string, 0, len(rivers))
	total := 0
	for code, set := range rivers {
		codes = append(codes, code)
		total += len(set)
	}
	slices.Sort(codes)

	shares := make([]Share, 0, len(codes))
	for _, code := range codes {
		n := len(rivers[code])
		shares = append(shares, Share{
			Key:     code,
			Label:   domain.BasinName(code),
			Count:   n,
			Percent: percent(n, total),
		})
	}
	return shares
}

// RiverLevelCount is one bar segment of the river by alert level chart.
type RiverLevelCount struct {
	River string `json:"river"`
	Level int    `json:"level"`
	Count int    `json:"count"`
}

// LevelCount is the number of rows with a given alert level.
type LevelCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// MonthLevelCount is one bar segment of the month by alert level chart.
type MonthLevelCount struct {
	Month int `json:"month"`
	Level int `json:"level"`
	Count int `json:"count"`
}

// YearCount is one point of the per-year line chart.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// AlertsQuery holds the selections of the "Analyse of the alert" page.
type AlertsQuery struct {
	Basin     string
	Year      int
	Territory string
}

// Alerts is the data of the "Analyse of the alert" page.
type Alerts struct {
	Basin       string            `json:"basin"`
	Year        int               `json:"year"`
	Territory   string            `json:"territory"`
	RiverLevels []RiverLevelCount `json:"river_levels"`
	Levels      []LevelCount      `json:"levels"`
	Months      []MonthLevelCount `json:"months"`
	Years       []YearCount       `json:"years"`
}

// AlertsPage builds the alerts page for the given selections.
func AlertsPage(ds *dataset.Dataset, q AlertsQuery) (Alerts, error) {
	riverLevels, err := RiverLevelCounts(ds, q.Basin)
	if err != nil {
		return Alerts{}, err
	}
	years, err := TerritoryYearCounts(ds, q.Territory)
	if err != nil {
		return Alerts{}, err
	}

	return Alerts{
		Basin:       q.Basin,
		Year:        q.Year,
		Territory:   q.Territory,
		RiverLevels: riverLevels,
		Levels:      LevelCounts(ds, q.Year),
		Months:      MonthLevelCounts(ds),
		Years:       years,
	}, nil
}

// RiverLevelCounts counts rows per (river, level) within the basin named
// basinName. Rivers are ordered with French collation, then levels ascending.
func RiverLevelCounts(ds *dataset.Dataset, basinName string) ([]RiverLevelCount, error) {
	codes, err := basinCodes(basinName)
	if err != nil {
		return nil, err
	}

	type key struct {
		river string
		level int
	}
	counts := make(map[key]int)
	ds.Each(func(r domain.Row) {
		if slices.Contains(codes, r.Basin) {
			counts[key{r.River, r.Level}]++
		}
	})

	var rivers []string
	for k := range counts {
		if !slices.Contains(rivers, k.river) {
			rivers = append(rivers, k.river)
		}
	}
	domain.SortLabels(rivers)
	rank := make(map[string]int, len(rivers))
	for i, r := range rivers {
		rank[r] = i
	}

	out := make([]RiverLevelCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, RiverLevelCount{River: k.river, Level: k.level, Count: n})
	}
	slices.SortFunc(out, func(a, b RiverLevelCount) int {
		if c := cmp.Compare(rank[a.River], rank[b.River]); c != 0 {
			return c
		}
		return cmp.Compare(a.Level, b.Level)
	})
	return out, nil
}

// LevelCounts counts rows per alert level for one year, levels ascending.
func LevelCounts(ds *dataset.Dataset, year int) []LevelCount {
	counts := make(map[int]int)
	ds.Each(func(r domain.Row) {
		if r.Year == year {
			counts[r.Level]++
		}
	})

	out := make([]LevelCount, 0, len(counts))
	for level, n := range counts {
		out = append(out, LevelCount{Level: level, Count: n})
	}
	slices.SortFunc(out, func(a, b LevelCount) int { return cmp.Compare(a.Level, b.Level) })
	return out
}

// MonthLevelCounts counts rows per (month, level) over the whole dataset.
func MonthLevelCounts(ds *dataset.Dataset) []MonthLevelCount {
	type key struct{ month, level int }
	counts := make(map[key]int)
	ds.Each(func(r domain.Row) {
		counts[key{r.Month, r.Level}]++
	})

	out := make([]MonthLevelCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, MonthLevelCount{Month: k.month, Level: k.level, Count: n})
	}
	slices.SortFunc(out, func(a, b MonthLevelCount) int {
		if c := cmp.Compare(a.Month, b.Month); c != 0 {
			return c
		}
		return cmp.Compare(a.Level, b.Level)
	})
	return out
}

// TerritoryYearCounts counts rows per year within the territory named
// territoryName, years ascending.
func TerritoryYearCounts(ds *dataset.Dataset, territoryName string) ([]YearCount, error) {
	codes, err := territoryCodes(territoryName)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	ds.Each(func(r domain.Row) {
		if slices.Contains(codes, r.Territory) {
			counts[r.Year]++
		}
	})

	out := make([]YearCount, 0, len(counts))
	for year, n := range counts {
		out = append(out, YearCount{Year: year, Count: n})
	}
	slices.SortFunc(out, func(a, b YearCount) int { return cmp.Compare(a.Year, b.Year) })
	return out, nil
}

// GeneralMap returns the density map of rows with the given year and level.
func GeneralMap(ds *dataset.Dataset, year, level int) Density {
	rows := ds.Filter(func(r domain.Row) bool {
		return r.Year == year && r.Level == level
	})
	return density(rows, generalMapZoom)
}

// TerritoryMap returns the density map of rows with the given year in the
// territory named territoryName.
func TerritoryMap(ds *dataset.Dataset, year int, territoryName string) (Density, error) {
	codes, err := territoryCodes(territoryName)
	if err != nil {
		return Density{}, err
	}
	rows := ds.Filter(func(r domain.Row) bool {
		return r.Year == year && slices.Contains(codes, r.Territory)
	})
	return density(rows, territoryMapZoom), nil
}
