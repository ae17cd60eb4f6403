// Package cluster holds the mutable clustering state and the scan
// loop that drives it: a stable descending length sort (§4.1), the
// representative/assignment bookkeeping (§3), and the six-step scan
// that assigns each chain in turn (§4.6).
package cluster

import (
	"sort"

	"github.com/GRAPH-0/USalign-parallel/chain"
)

// LengthIndex returns the indices of s's chains sorted by descending
// residue count, stable on ties so load order breaks ties
// deterministically.
func LengthIndex(s *chain.Store) []int {
	idx := make([]int, s.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return s.At(idx[i]).Len > s.At(idx[j]).Len
	})
	return idx
}
