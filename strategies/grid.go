package strategies

import (
	"sort"

	"github.com/samber/lo"
)

// Grid maps a param name to the values to try for it.
type Grid map[string][]float64

// Expand returns the cartesian product of the grid as Params. Keys are walked
// in sorted order with the last key varying fastest, so the result is stable.
// A key with no values is skipped. An empty grid expands to a single empty
// Params.
func (g Grid) Expand() []Params {
	keys := lo.Filter(lo.Keys(map[string][]float64(g)), func(k string, _ int) bool { return len(g[k]) > 0 })
	sort.Strings(keys)

	out := []Params{{}}
	for _, k := range keys {
		next := make([]Params, 0, len(out)*len(g[k]))
		for _, base := range out {
			for _, v := range g[k] {
				p := make(Params, len(base)+1)
				for bk, bv := range base {
					p[bk] = bv
				}
				p[k] = v
				next = append(next, p)
			}
		}
		out = next
	}
	return out
}

// Size reports how many Params Expand would return.
func (g Grid) Size() int {
	n := 1
	for _, vals := range g {
		if len(vals) > 0 {
			n *= len(vals)
		}
	}
	return n
}
