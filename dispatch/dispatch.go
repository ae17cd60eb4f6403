// Package dispatch implements the parallel candidate race of spec
// §4.5: a query's candidate list is partitioned round-robin across K
// workers, each running the two-tier alignment worker on its share;
// the first worker to find a HIT cancels its peers.
package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GRAPH-0/USalign-parallel/align"
	"github.com/GRAPH-0/USalign-parallel/chain"
)

// Result is the winning candidate of one Dispatcher.Run call.
type Result struct {
	Rep *chain.Record
	TM  float64
}

// Dispatcher races a query against a candidate list under §4.3's
// two-tier protocol, configured once and reused across queries.
type Dispatcher struct {
	Kernel  align.Kernel
	S       int
	T       float64
	FastOpt bool
	// Threads is K. 0 defaults to runtime.GOMAXPROCS(0). 1 selects the
	// deterministic sequential mode of §4.5's "MAY provide" clause:
	// candidates are scanned in list order (already HwRMSD-rank order
	// when the pre-filter is enabled), reproducing single-threaded
	// behavior exactly.
	Threads int
}

// Run returns the winning candidate, or a nil Result on MISS. The
// combined molecule-type sign for bound recomputation is computed per
// candidate from q and the candidate's own Mol, never a constant,
// matching spec.md §9's REDESIGN FLAGS direction.
func (d *Dispatcher) Run(ctx context.Context, q *chain.Record, candidates []*chain.Record) (*Result, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	k := d.Threads
	if k <= 0 {
		k = runtime.GOMAXPROCS(0)
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	if k <= 1 {
		return d.runSequential(ctx, q, candidates)
	}
	return d.runParallel(ctx, q, candidates, k)
}

func (d *Dispatcher) runSequential(ctx context.Context, q *chain.Record, candidates []*chain.Record) (*Result, error) {
	w := &align.Worker{Kernel: d.Kernel, S: d.S, T: d.T, FastOpt: d.FastOpt}
	for _, r := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, nil
		}
		out, err := w.Run(q, r, q.Mol+r.Mol)
		if err != nil {
			return nil, fmt.Errorf("dispatch: %q vs %q: %w", q.ID, r.ID, err)
		}
		if out.Hit {
			return &Result{Rep: r, TM: out.TM}, nil
		}
	}
	return nil, nil
}

func (d *Dispatcher) runParallel(parent context.Context, q *chain.Record, candidates []*chain.Record, k int) (*Result, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	shares := partitionRoundRobin(candidates, k)

	var mu sync.Mutex
	var winner *Result

	for _, share := range shares {
		share := share
		g.Go(func() error {
			w := &align.Worker{Kernel: d.Kernel, S: d.S, T: d.T, FastOpt: d.FastOpt}
			for _, r := range share {
				if gctx.Err() != nil {
					return nil
				}
				out, err := w.Run(q, r, q.Mol+r.Mol)
				if err != nil {
					return fmt.Errorf("dispatch: %q vs %q: %w", q.ID, r.ID, err)
				}
				if !out.Hit {
					continue
				}
				mu.Lock()
				if gctx.Err() == nil && winner == nil {
					winner = &Result{Rep: r, TM: out.TM}
					cancel()
				}
				mu.Unlock()
				return nil
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return winner, nil
}

// partitionRoundRobin splits items into k shares by index modulo k,
// so share i holds items i, i+k, i+2k, ... preserving each worker's
// slice in the caller's original order.
func partitionRoundRobin(items []*chain.Record, k int) [][]*chain.Record {
	shares := make([][]*chain.Record, k)
	for i, it := range items {
		shares[i%k] = append(shares[i%k], it)
	}
	return shares
}
