// Package core holds the pure aggregation and reporting engine: record
// types, summary reductions and the date-range report filter. Everything
// here is stateless and side-effect free; callers pass record snapshots in
// and get derived views out.
package core

import "sort"

// KeyAmount is one grouped sum, keyed by category, type or free-form label.
type KeyAmount struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
}

// Total sums amountOf over all records. An empty collection yields 0.
func Total[R any](records []R, amountOf func(R) float64) float64 {
	var sum float64
	for _, r := range records {
		sum += amountOf(r)
	}
	return sum
}

// SumByKeys reduces records into per-key sums over a fixed, ordered key
// enumeration. Keys whose sum is exactly 0 are dropped so that chart data
// carries no zero-size slices; the remaining entries keep the enumeration
// order. Records keyed outside the enumeration are ignored here (they still
// count toward Total).
func SumByKeys[R any, K ~string](records []R, keys []K, keyOf func(R) K, amountOf func(R) float64) []KeyAmount {
	sums := make(map[K]float64, len(keys))
	for _, r := range records {
		sums[keyOf(r)] += amountOf(r)
	}
	out := make([]KeyAmount, 0, len(keys))
	for _, k := range keys {
		if sum := sums[k]; sum != 0 {
			out = append(out, KeyAmount{Key: string(k), Amount: sum})
		}
	}
	return out
}

// TopByKey groups records by a free-form string key, sums amounts per
// group, and returns the n largest groups in non-increasing order. Groups
// with equal sums rank by first occurrence in the input, which keeps the
// result deterministic for a given snapshot.
func TopByKey[R any](records []R, keyOf func(R) string, amountOf func(R) float64, n int) []KeyAmount {
	sums := make(map[string]float64)
	var order []string
	for _, r := range records {
		k := keyOf(r)
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += amountOf(r)
	}
	groups := make([]KeyAmount, 0, len(order))
	for _, k := range order {
		groups = append(groups, KeyAmount{Key: k, Amount: sums[k]})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount > groups[j].Amount
	})
	if n >= 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
