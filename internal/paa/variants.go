// Package paa harvests "People also ask" questions for a seed keyword by
// querying a search provider across a fixed set of keyword variants and
// result pages.
package paa

// Offsets are the pagination offsets requested for every variant, in order.
var Offsets = []int{0, 10, 20}

// VariantCount is the number of variants Variants produces.
const VariantCount = 6

// Variants returns the fixed keyword rewrites for a seed and geo target.
// The order is significant: it decides which duplicate question wins.
func Variants(seed, geoTarget string) []string {
	return []string{
		seed,
		seed + " near me",
		seed + " " + geoTarget,
		"common questions about " + seed,
		seed + " services",
		"what to know about " + seed,
	}
}
