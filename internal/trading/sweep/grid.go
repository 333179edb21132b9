// Package sweep runs a strategy across a parameter grid and ranks the
// outcomes, optionally in walk-forward folds.
package sweep

import "sort"

// Grid maps a strategy parameter name to the values to try
type Grid map[string][]float64

// Keys returns the parameter names in sorted order
func (g Grid) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size is the number of combinations Expand produces
func (g Grid) Size() int {
	n := 1
	for _, values := range g {
		n *= len(values)
	}
	return n
}

// Expand returns the cartesian product of the grid. Keys vary in sorted order
// with the last key changing fastest. An empty grid yields a single empty set.
func (g Grid) Expand() []map[string]float64 {
	keys := g.Keys()
	combos := []map[string]float64{{}}

	for _, key := range keys {
		values := g[key]
		next := make([]map[string]float64, 0, len(combos)*len(values))
		for _, base := range combos {
			for _, v := range values {
				combo := make(map[string]float64, len(base)+1)
				for k, bv := range base {
					combo[k] = bv
				}
				combo[key] = v
				next = append(next, combo)
			}
		}
		combos = next
	}
	return combos
}
