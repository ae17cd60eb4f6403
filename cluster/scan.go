package cluster

import (
	"context"
	"fmt"

	"github.com/GRAPH-0/USalign-parallel/admit"
	"github.com/GRAPH-0/USalign-parallel/align"
	"github.com/GRAPH-0/USalign-parallel/candidate"
	"github.com/GRAPH-0/USalign-parallel/chain"
	"github.com/GRAPH-0/USalign-parallel/dispatch"
	"github.com/GRAPH-0/USalign-parallel/hint"
)

// Config holds the scan loop's tunables, one per §6 configuration
// knob plus the HwRMSD/hint wiring of §4.4.
type Config struct {
	S             int
	T             float64
	FastOpt       bool
	HwRMSDEnabled bool
	HwRMSDIter    int
	Threads       int
	Hints         *hint.Set
}

// ProgressEvent reports scan progress for the optional callback of
// SUPPLEMENTED FEATURES #3 (the original's running "%"/"#repr=N/M"
// line).
type ProgressEvent struct {
	Index, Total int
	ReprCount    int
	ChainID      string
}

// Scan runs the six-step loop of §4.6 over every chain in store,
// returning the resulting clustering state. progress may be nil.
func Scan(ctx context.Context, store *chain.Store, kernel align.Kernel, cfg Config, progress func(ProgressEvent)) (*State, error) {
	order := LengthIndex(store)
	state := NewState()
	disp := &dispatch.Dispatcher{
		Kernel:  kernel,
		S:       cfg.S,
		T:       cfg.T,
		FastOpt: cfg.FastOpt,
		Threads: cfg.Threads,
	}

	if len(order) == 0 {
		return state, nil
	}

	first := store.At(order[0])
	state.NewCluster(first)
	report(progress, 0, len(order), 1, first.ID)

	for i := 1; i < len(order); i++ {
		q := store.At(order[i])

		if q.Len <= 5 {
			state.NewCluster(q)
			report(progress, i, len(order), len(state.ReprList), q.ID)
			continue
		}

		admissible := admissibleReps(state.ReprList, q, cfg.S, cfg.T)

		candidates := admissible
		if cfg.HwRMSDEnabled {
			var err error
			candidates, err = candidate.Select(q, admissible, candidate.Params{
				S:             cfg.S,
				T:             cfg.T,
				HwRMSDEnabled: true,
				HwRMSDIter:    cfg.HwRMSDIter,
				Kernel:        kernel,
				Hints:         cfg.Hints,
			})
			if err != nil {
				return nil, fmt.Errorf("cluster: scan: selecting candidates for %q: %w", q.ID, err)
			}
		}

		winner, err := disp.Run(ctx, q, candidates)
		if err != nil {
			return nil, fmt.Errorf("cluster: scan: dispatching %q: %w", q.ID, err)
		}

		if winner != nil {
			state.Assign(q, winner.Rep)
			q.Release()
		} else {
			state.NewCluster(q)
		}
		report(progress, i, len(order), len(state.ReprList), q.ID)
	}
	return state, nil
}

// admissibleReps walks reps newest to oldest (the length-proximity
// heuristic of §4.6 step 2) keeping those admit.Admissible clears.
func admissibleReps(reps []*chain.Record, q *chain.Record, s int, T float64) []*chain.Record {
	out := make([]*chain.Record, 0, len(reps))
	for i := len(reps) - 1; i >= 0; i-- {
		r := reps[i]
		if admit.Admissible(q.Len, r.Len, q.Mol, r.Mol, T, s) {
			out = append(out, r)
		}
	}
	return out
}

func report(progress func(ProgressEvent), i, total, reprCount int, id string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Index: i, Total: total, ReprCount: reprCount, ChainID: id})
}
