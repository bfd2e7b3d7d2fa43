// Package observations holds photometric measurement sets consumed by the
// surrogate's likelihood functions.
package observations

import (
	"fmt"
	"sort"
)

// Set is a collection of photometric observations as parallel arrays, plus
// the luminosity distance of the source in centimetres. All arrays share
// index order; UpperLimitIndices flags non-detections by index.
type Set struct {
	Times             []float64
	Filters           []string
	Magnitudes        []float64
	MagnitudeErrors   []float64
	UpperLimitIndices []int
	Distance          float64

	filtersUnique []string
}

// New validates the parallel arrays and derives the unique filter labels.
func New(times []float64, filters []string, magnitudes, magnitudeErrors []float64,
	upperLimitIndices []int, distance float64) (*Set, error) {
	n := len(times)
	if n == 0 {
		return nil, fmt.Errorf("observations: empty set")
	}
	if len(filters) != n || len(magnitudes) != n || len(magnitudeErrors) != n {
		return nil, fmt.Errorf("observations: parallel arrays disagree: %d times, %d filters, %d magnitudes, %d errors",
			n, len(filters), len(magnitudes), len(magnitudeErrors))
	}
	if distance <= 0 {
		return nil, fmt.Errorf("observations: distance must be positive, got %g", distance)
	}
	for _, idx := range upperLimitIndices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("observations: upper-limit index %d out of range [0, %d)", idx, n)
		}
	}

	seen := make(map[string]bool, len(filters))
	var unique []string
	for _, f := range filters {
		if f == "" {
			return nil, fmt.Errorf("observations: empty filter label")
		}
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}
	sort.Strings(unique)

	return &Set{
		Times:             times,
		Filters:           filters,
		Magnitudes:        magnitudes,
		MagnitudeErrors:   magnitudeErrors,
		UpperLimitIndices: upperLimitIndices,
		Distance:          distance,
		filtersUnique:     unique,
	}, nil
}

// Len is the number of observations.
func (s *Set) Len() int {
	return len(s.Times)
}

// FiltersUnique lists the distinct filter labels, sorted.
func (s *Set) FiltersUnique() []string {
	return s.filtersUnique
}
