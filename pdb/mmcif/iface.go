package mmcif

import (
	"sort"

	"github.com/GRAPH-0/USalign-parallel/pdb/cmmn"
)

// GetChains flattens the reader's per-chain, per-model coordinate
// storage into the simpler cmmn.Chain slice the rest of the pdb
// package works with: one entry per (chain, model) pair, so a caller
// that wants every model (loader's SplitModel mode) sees all of them
// instead of only the first. Chains come out sorted by chain ID, so
// the order is the same on every call.
func (md *MmcifData) GetChains() []cmmn.Chain {
	ret := make([]cmmn.Chain, 0)
	ids := make([]chainID, 0, len(md.Allcoord))
	for chainid := range md.Allcoord {
		ids = append(ids, chainid)
	}
	sort.Slice(ids, func(i, j int) bool { return string(ids[i]) < string(ids[j]) })
	for _, chainid := range ids {
		onechain := md.Allcoord[chainid]
		for mdlIdx, model := range onechain.coords {
			ch := new(cmmn.Chain)
			ch.ChainID = string(chainid)
			ch.MdlNum = int16(mdlIdx)
			ch.NumLbl = onechain.numLbl
			ch.InsCode = onechain.insCode
			ch.CoordSet = make(cmmn.CoordSet)
			for atname, xyzsl := range model {
				ch.CoordSet[string(atname)] = xyzsl
			}
			ret = append(ret, *ch)
		}
	}
	return ret
}
