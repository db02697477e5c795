// Package strings provides string-slice normalization helpers.
package strings

import (
	"strings"

	"github.com/samber/lo"
)

// DedupeAndTrim trims each element, drops empties and duplicates. Order is preserved.
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}) // []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(values, func(v string, _ int) string {
		return strings.TrimSpace(v)
	})))
}

// DedupeAndTrimLower is DedupeAndTrim with lowercasing, for country codes and
// other case-insensitive keys.
func DedupeAndTrimLower(values []string) []string {
	return DedupeAndTrim(lo.Map(values, func(v string, _ int) string {
		return strings.ToLower(v)
	}))
}
