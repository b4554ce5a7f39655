// Package collections holds the small de-duplication and grouping helpers
// used when reducing GraphQL node lists for display.
package collections

import (
	"fmt"
	"strconv"
)

// KeyFunc extracts a grouping key from an item. ok is false when the item
// has no such field at all, which is distinct from a present nil value.
type KeyFunc[T any] func(item T) (key any, ok bool)

// UniqueStrings returns the distinct string values in first-seen order.
// Anything that is not a string (nil included) is dropped.
func UniqueStrings(values []any) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// UniqueBy keeps one item per distinct key. The first item carrying a key is
// the one kept, and keys are emitted in order of their last occurrence.
// Items whose key is missing, nil or not a string/number are dropped.
func UniqueBy[T any](items []T, key KeyFunc[T]) []T {
	kept := make(map[any]T)
	var order []any // reverse order of last occurrence
	for i := len(items) - 1; i >= 0; i-- {
		k, ok := key(items[i])
		if !ok || !isScalar(k) {
			continue
		}
		if _, seen := kept[k]; !seen {
			order = append(order, k)
		}
		kept[k] = items[i]
	}

	out := make([]T, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		out = append(out, kept[order[i]])
	}
	return out
}

// GroupBy partitions items by the string form of their key. Missing keys
// group under "undefined" and nil keys under "null".
func GroupBy[T any](items []T, key KeyFunc[T]) map[string][]T {
	groups := make(map[string][]T)
	for _, item := range items {
		k, ok := key(item)
		name := Stringify(k, ok)
		groups[name] = append(groups[name], item)
	}
	return groups
}

// Stringify renders a key the way GroupBy names its groups.
func Stringify(k any, ok bool) string {
	switch {
	case !ok:
		return "undefined"
	case k == nil:
		return "null"
	}
	switch v := k.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func isScalar(k any) bool {
	switch k.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
