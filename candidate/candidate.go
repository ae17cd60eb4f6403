// Package candidate implements the HwRMSD pre-filter of spec §4.4: it
// ranks a query's admissible representatives by a cheap structural
// score, biases the ranking toward preassignment hints, and truncates
// the result to a length-dependent prefix before the alignment worker
// ever runs a full TM-align.
package candidate

import (
	"fmt"
	"math"
	"sort"

	"github.com/GRAPH-0/USalign-parallel/align"
	"github.com/GRAPH-0/USalign-parallel/chain"
	"github.com/GRAPH-0/USalign-parallel/hint"
)

// Params configures one Select call. Kernel and HwRMSDIter are
// ignored when HwRMSDEnabled is false.
type Params struct {
	S             int
	T             float64
	HwRMSDEnabled bool
	HwRMSDIter    int // default 10 when <= 0
	Kernel        align.Kernel
	Hints         *hint.Set
}

// Ranked is one scored representative.
type Ranked struct {
	Rep   *chain.Record
	Score float64
}

// Select reduces reps (already admissibility-filtered, newest-first)
// to the ranked, truncated candidate list for query q.
func Select(q *chain.Record, reps []*chain.Record, p Params) ([]*chain.Record, error) {
	if !p.HwRMSDEnabled {
		return append([]*chain.Record(nil), reps...), nil
	}
	if p.Kernel == nil {
		return nil, fmt.Errorf("candidate: HwRMSD enabled but no kernel configured")
	}
	iter := p.HwRMSDIter
	if iter <= 0 {
		iter = 10
	}
	ubHw := align.UbFast(p.T)

	var partners map[string]bool
	wantHinted := 0
	if p.Hints != nil {
		ps := p.Hints.Partners(q.ID)
		if len(ps) > 0 {
			partners = make(map[string]bool, len(ps))
			for _, id := range ps {
				partners[id] = true
			}
			wantHinted = len(ps)
		}
	}

	var ranked []Ranked
	hintedCount := 0
	for _, r := range reps {
		molSum := q.Mol + r.Mol
		res, err := p.Kernel.HwRMSD(q, r, molSum, iter)
		if err != nil {
			return nil, fmt.Errorf("candidate: HwRMSD(%q, %q): %w", q.ID, r.ID, err)
		}
		tmHw := align.Composite(p.S, res.TM1, res.TM2)
		lbHw := lbHwRMSD(p.S, p.T, molSum)

		lbar := math.Sqrt(float64(q.Len) * float64(r.Len))
		if tmHw < lbHw && lbar > 50 {
			if partners != nil && hintedCount >= 2 && len(ranked) >= wantHinted {
				break
			}
			continue
		}

		score := tmHw
		if partners != nil && partners[r.ID] {
			score = tmHw + 1
			hintedCount++
		}
		ranked = append(ranked, Ranked{Rep: r, Score: score})

		if tmHw >= ubHw {
			break
		}
		if partners != nil && hintedCount >= 2 && len(ranked) >= wantHinted {
			break
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	n := truncationSize(q.Len)
	out := make([]*chain.Record, 0, n)
	for _, rk := range ranked {
		if len(out) < n {
			out = append(out, rk.Rep)
			continue
		}
		lbar := math.Sqrt(float64(q.Len) * float64(rk.Rep.Len))
		if lbar > 50 && rk.Score < 0.5*p.T {
			break
		}
		out = append(out, rk.Rep)
	}
	return out, nil
}

// lbHwRMSD is the lb_HwRMSD bound of §4.4, with the s<=1 RNA/protein
// override, mirroring align.LbFast's molSum convention: positive sum
// is RNA, negative is protein.
func lbHwRMSD(s int, T float64, molSum int) float64 {
	if s <= 1 {
		if molSum > 0 {
			return 0.02 * T
		}
		return 0.25 * T
	}
	return 0.5 * T
}

// truncationSize is N(x) of §4.4's truncation table, x = query length.
func truncationSize(x int) int {
	switch {
	case x <= 50:
		return 50
	case x >= 1000:
		return 10
	default:
		n := 10.0 + (1000.0-float64(x))/(1000.0-50.0)*40.0
		return int(math.Round(n))
	}
}
