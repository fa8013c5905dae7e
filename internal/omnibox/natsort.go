package omnibox

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// NaturalLess orders strings with embedded numbers numerically and the rest
// case-insensitively, so "item2" sorts before "item10"
func NaturalLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return natural.Less(la, lb)
	}
	return a < b
}

// SortNatural returns a naturally sorted copy of values
func SortNatural(values []string) []string {
	out := append([]string(nil), values...)
	sort.SliceStable(out, func(i, j int) bool {
		return NaturalLess(out[i], out[j])
	})
	return out
}
