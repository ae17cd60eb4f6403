package align

import (
	"fmt"
	"math"

	"github.com/GRAPH-0/USalign-parallel/chain"
)

// Composite combines TM1 (normalized by the query length) and TM2
// (normalized by the candidate length) into the single scalar TM(s)
// of §4.2/§4.3.
func Composite(s int, tm1, tm2 float64) float64 {
	switch s {
	case 1:
		return math.Max(tm1, tm2)
	case 2:
		return math.Min(tm1, tm2)
	case 3:
		return (tm1 + tm2) / 2
	case 4:
		if tm1 == 0 || tm2 == 0 {
			return 0
		}
		return 2 / (1/tm1 + 1/tm2)
	case 5:
		return math.Sqrt(tm1 * tm2)
	case 6:
		return math.Sqrt((tm1*tm1 + tm2*tm2) / 2)
	default:
		return math.Min(tm1, tm2)
	}
}

// UbFast is the high-confidence upper bound of §4.3.
func UbFast(T float64) float64 { return 0.9*T + 0.1 }

// LbFast is the lower short-circuit bound, with the s<=1 override for
// protein/RNA of §4.3. molSum is the sum of the two chains' mol
// signs; per the Open Questions resolution this is always the true
// combined sign, not a constant.
func LbFast(s int, T float64, molSum int) float64 {
	if s <= 1 {
		if molSum > 0 {
			return 0.60 * T
		}
		return 0.25 * T
	}
	return 0.9 * T
}

// Outcome is the verdict of one Worker.Run call.
type Outcome struct {
	Hit bool
	TM  float64 // composite score from the tier that decided the verdict
}

// Worker runs the two-tier fast/precise protocol of §4.3 on one
// (query, candidate) pair.
type Worker struct {
	Kernel  Kernel
	S       int     // composite rule, 1..6
	T       float64 // TM-score cutoff
	FastOpt bool    // force fast tier-1 for every pair
}

// Run decides HIT/MISS for (q, r) under w's configured rule and
// cutoff. molSum is the true combined molecule-type sign of the pair.
func (w *Worker) Run(q, r *chain.Record, molSum int) (Outcome, error) {
	if w.Kernel == nil {
		return Outcome{}, fmt.Errorf("align: worker has no kernel")
	}
	x, y := q.Len, r.Len
	lbar := math.Sqrt(float64(x) * float64(y))
	fast := w.FastOpt || lbar >= 1000

	ubFast := UbFast(w.T)
	lbFast := LbFast(w.S, w.T, molSum)

	res1, err := w.Kernel.TMAlign(q, r, molSum, w.T, fast)
	if err != nil {
		return Outcome{}, fmt.Errorf("align: tier-1 alignment of %q/%q: %w", q.ID, r.ID, err)
	}
	tm := Composite(w.S, res1.TM1, res1.TM2)
	if tm >= ubFast || (tm >= w.T && fast) {
		return Outcome{Hit: true, TM: tm}, nil
	}
	if tm < lbFast {
		return Outcome{Hit: false, TM: tm}, nil
	}

	res2, err := w.Kernel.TMAlign(q, r, molSum, w.T, false)
	if err != nil {
		return Outcome{}, fmt.Errorf("align: tier-2 alignment of %q/%q: %w", q.ID, r.ID, err)
	}
	tm2 := Composite(w.S, res2.TM1, res2.TM2)
	return Outcome{Hit: tm2 >= w.T, TM: tm2}, nil
}
