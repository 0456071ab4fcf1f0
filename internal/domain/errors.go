package domain

import (
	"errors"
	"fmt"
)

// ErrNoFeatures is wrapped by LoadError when the collection is empty.
var ErrNoFeatures = errors.New("feature collection has no features")

// LoadError reports a feature collection that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// GeometryError reports a feature whose geometry cannot be closed into a ring.
type GeometryError struct {
	Feature int
	Reason  string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry of feature %d: %s", e.Feature, e.Reason)
}

// DateParseError reports an alert timestamp that could not be parsed.
type DateParseError struct {
	Feature int
	Value   string
	Err     error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse date of feature %d: %q: %v", e.Feature, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }
