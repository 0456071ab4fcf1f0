package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// alertTimeLayouts are tried in order. Layouts without a zone are read as UTC.
var alertTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var errUnknownLayout = errors.New("no known timestamp layout")

// ParseAlertTime parses an alert entry timestamp. Besides the text layouts in
// alertTimeLayouts it accepts an all-digit value as Unix epoch milliseconds,
// which is how some GeoJSON writers export datetime columns.
func ParseAlertTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	if isDigits(value) {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("epoch milliseconds: %w", err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}

	for _, layout := range alertTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnknownLayout
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// CleanFeatures applies the drop-null policy: features with any missing
// attribute are discarded, and features whose timestamp does not parse are
// discarded with a DateParseError in the returned list. Order is preserved.
func CleanFeatures(features []NormalizedFeature) (kept []CleanFeature, nullDropped int, dateErrs []error) {
	kept = make([]CleanFeature, 0, len(features))
	for _, f := range features {
		p := f.Properties
		if !p.Complete() || len(f.Ring()) == 0 {
			nullDropped++
			continue
		}

		at, err := ParseAlertTime(*p.AlertTime)
		if err != nil {
			dateErrs = append(dateErrs, &DateParseError{Feature: f.Index, Value: *p.AlertTime, Err: err})
			continue
		}

		kept = append(kept, CleanFeature{
			Index: f.Index,
			Alert: Alert{
				River:     *p.River,
				AlertTime: at,
				Level:     *p.Level,
				Basin:     *p.Basin,
				Territory: *p.Territory,
			},
			Polygon: f.Polygon,
		})
	}
	return kept, nullDropped, dateErrs
}
