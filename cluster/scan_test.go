package cluster_test

import (
	"context"
	"testing"

	"github.com/GRAPH-0/USalign-parallel/align"
	"github.com/GRAPH-0/USalign-parallel/chain"
	. "github.com/GRAPH-0/USalign-parallel/cluster"
)

// pairKernel scores a (query, rep) pair by an explicit table keyed on
// both IDs, defaulting to a MISS-level score for any untabulated pair.
type pairKernel struct {
	tm map[[2]string]float64
}

func (k *pairKernel) score(q, r *chain.Record) float64 {
	if v, ok := k.tm[[2]string{q.ID, r.ID}]; ok {
		return v
	}
	return 0.01
}

func (k *pairKernel) TMAlign(q, r *chain.Record, molSum int, cutoff float64, fast bool) (align.Result, error) {
	v := k.score(q, r)
	return align.Result{TM1: v, TM2: v}, nil
}

func (k *pairKernel) HwRMSD(q, r *chain.Record, molSum int, iter int) (align.Result, error) {
	return k.TMAlign(q, r, molSum, 0, true)
}

func TestScanSeedsFirstClusterWithLongestChain(t *testing.T) {
	s := chain.NewStore([]*chain.Record{
		{ID: "short", Mol: chain.MolProtein, Len: 20},
		{ID: "long", Mol: chain.MolProtein, Len: 100},
	})
	k := &pairKernel{tm: map[[2]string]float64{}}
	cfg := Config{S: 2, T: 0.5, Threads: 1}
	state, err := Scan(context.Background(), s, k, cfg, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(state.ReprList) == 0 || state.ReprList[0].ID != "long" {
		t.Errorf("first cluster should be seeded by the longest chain, got %+v", state.ReprList)
	}
}

func TestScanShortChainAlwaysSingleton(t *testing.T) {
	s := chain.NewStore([]*chain.Record{
		{ID: "rep", Mol: chain.MolProtein, Len: 100},
		{ID: "tiny", Mol: chain.MolProtein, Len: 3},
	})
	k := &pairKernel{tm: map[[2]string]float64{{"tiny", "rep"}: 0.99}}
	cfg := Config{S: 2, T: 0.5, Threads: 1}
	state, err := Scan(context.Background(), s, k, cfg, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if state.ClusterOf(s.At(1)) == state.ClusterOf(s.At(0)) {
		t.Errorf("a chain of length <= 5 must always seed its own cluster, even when it would otherwise hit")
	}
	if !state.IsRepresentative(s.At(1)) {
		t.Errorf("a length <= 5 chain should be its own representative")
	}
}

func TestScanAssignsMatchingChainToExistingCluster(t *testing.T) {
	s := chain.NewStore([]*chain.Record{
		{ID: "rep", Mol: chain.MolProtein, Len: 100},
		{ID: "member", Mol: chain.MolProtein, Len: 95},
	})
	k := &pairKernel{tm: map[[2]string]float64{{"member", "rep"}: 0.9}}
	cfg := Config{S: 2, T: 0.5, Threads: 1}
	state, err := Scan(context.Background(), s, k, cfg, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	rep := s.At(0)
	member := s.At(1)
	if state.ClusterOf(member) != state.ClusterOf(rep) {
		t.Errorf("member should join rep's cluster, got member=%d rep=%d", state.ClusterOf(member), state.ClusterOf(rep))
	}
	if !member.Released() {
		t.Errorf("an assigned member's per-residue data should be released")
	}
}

func TestScanFoundsNewClusterOnMiss(t *testing.T) {
	s := chain.NewStore([]*chain.Record{
		{ID: "rep", Mol: chain.MolProtein, Len: 100},
		{ID: "distinct", Mol: chain.MolProtein, Len: 95},
	})
	k := &pairKernel{tm: map[[2]string]float64{{"distinct", "rep"}: 0.01}}
	cfg := Config{S: 2, T: 0.5, Threads: 1}
	state, err := Scan(context.Background(), s, k, cfg, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(state.ReprList) != 2 {
		t.Errorf("expected two clusters on a MISS, got %d", len(state.ReprList))
	}
}

func TestScanProgressCallbackFiresPerChain(t *testing.T) {
	s := chain.NewStore([]*chain.Record{
		{ID: "rep", Mol: chain.MolProtein, Len: 100},
		{ID: "other", Mol: chain.MolProtein, Len: 95},
	})
	k := &pairKernel{tm: map[[2]string]float64{}}
	cfg := Config{S: 2, T: 0.5, Threads: 1}
	var events []ProgressEvent
	_, err := Scan(context.Background(), s, k, cfg, func(e ProgressEvent) { events = append(events, e) })
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected one progress event per chain, got %d", len(events))
	}
}
