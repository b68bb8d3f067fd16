// Package aggregate provides the group-sum and group-broadcast primitives
// used to move values across the person / tax unit / household hierarchy.
// These are the only cross-record data paths in the engine; every formula
// otherwise reads a single record.
package aggregate

import "github.com/shopspring/decimal"

// Sum reduces parallel (key, value) slices to per-group totals.
func Sum[K comparable](keys []K, values []decimal.Decimal) map[K]decimal.Decimal {
	totals := make(map[K]decimal.Decimal)
	for i, k := range keys {
		totals[k] = totals[k].Add(values[i])
	}
	return totals
}

// Broadcast gathers a per-group value back onto every member, preserving
// input order. Keys absent from totals yield zero.
func Broadcast[K comparable](keys []K, totals map[K]decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(keys))
	for i, k := range keys {
		out[i] = totals[k]
	}
	return out
}

// Count returns the number of members per group.
func Count[K comparable](keys []K) map[K]int {
	counts := make(map[K]int)
	for _, k := range keys {
		counts[k]++
	}
	return counts
}

// Index returns, per group, the positions of its members in input order.
// Built once per run so group statistics stay linear in the record count.
func Index[K comparable](keys []K) map[K][]int {
	members := make(map[K][]int)
	for i, k := range keys {
		members[k] = append(members[k], i)
	}
	return members
}
