// Package colorscale maps numbers onto colours through start breakpoints.
package colorscale

import (
	"cmp"
	"slices"
)

// Range is a breakpoint: values >= Start take Color until the next
// breakpoint begins.
type Range struct {
	Start float64 `json:"start"`
	Color string  `json:"color"`
}

// Lookup returns the colour of the greatest breakpoint whose Start is <= value.
// Breakpoints may be given in any order; among equal starts the one listed
// last wins. ok is false when value lies below every breakpoint.
func Lookup(value float64, ranges []Range) (color string, ok bool) {
	sorted := slices.Clone(ranges)
	slices.SortStableFunc(sorted, func(a, b Range) int { return cmp.Compare(a.Start, b.Start) })

	for i := len(sorted) - 1; i >= 0; i-- {
		if value >= sorted[i].Start {
			return sorted[i].Color, true
		}
	}
	return "", false
}

// Scale is a reusable set of breakpoints.
type Scale []Range

// Color is Lookup over s, returning fallback when nothing matches.
func (s Scale) Color(value float64, fallback string) string {
	if c, ok := Lookup(value, s); ok {
		return c
	}
	return fallback
}
