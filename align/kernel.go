// Package align implements the structural alignment primitives and
// the two-tier fast/precise worker that decides whether a (query,
// candidate) pair is a cluster HIT.
//
// TM-align and HwRMSD are specified in spec terms as external black
// boxes; DefaultKernel is nonetheless a genuine, runnable
// implementation built from this module's own primitives rather than
// a stub, so the rest of the pipeline can be exercised and tested
// end-to-end: residue correspondence comes from a Gotoh alignment
// (package gotoh) over a distance/secondary-structure compatibility
// matrix that is recomputed every refinement round from the current
// superposition, and the rigid-body fit for that superposition is
// found by a
// Nelder-Mead simplex search (package simplex) minimizing weighted
// squared deviation, standing in for a closed-form Kabsch/SVD step
// that this module does not otherwise have a use for.
package align

import (
	"fmt"
	"math"
	"sync"

	"github.com/GRAPH-0/USalign-parallel/chain"
	"github.com/GRAPH-0/USalign-parallel/geom"
	"github.com/GRAPH-0/USalign-parallel/gotoh"
	"github.com/GRAPH-0/USalign-parallel/matrix"
	"github.com/GRAPH-0/USalign-parallel/simplex"
)

// compatPool hands out *matrix.FMatrix2d buffers for the per-round
// compatibility matrix so a run of many refinement rounds, across many
// candidate pairs on many dispatcher workers, does not allocate a
// fresh backing array every round: Resize only reallocates when the
// pooled buffer is too small, otherwise it just re-slices the
// existing one, the same growth-only reuse matrix.FMatrix2d.Resize
// already gives the teacher's own code.
var compatPool = sync.Pool{
	New: func() any { return new(matrix.FMatrix2d) },
}

func getCompatMatrix(nr, nc int) *matrix.FMatrix2d {
	m := compatPool.Get().(*matrix.FMatrix2d)
	return m.Resize(nr, nc)
}

func putCompatMatrix(m *matrix.FMatrix2d) {
	compatPool.Put(m)
}

// Result is what package cluster and its callers see from either
// primitive: TM1/TM2 under the x/y-normalized convention of §6, plus
// three passthrough slots callers may ignore.
type Result struct {
	TM1, TM2, TM3, TM4, TM5 float64
	Hit                     bool
}

// Kernel is the external-interface contract of §6: given two chains,
// a combined molecule-type sign and a cutoff, return TM1 (normalized
// by the query length) and TM2 (normalized by the candidate length).
type Kernel interface {
	TMAlign(q, r *chain.Record, molSum int, cutoff float64, fast bool) (Result, error)
	HwRMSD(q, r *chain.Record, molSum int, iter int) (Result, error)
}

// DefaultKernel is the concrete Kernel used outside of tests.
type DefaultKernel struct {
	FastRounds     int // refinement rounds used for tier-1 fast mode
	PreciseRounds  int // refinement rounds used for tier-2 precise mode
	HwRounds       int // default refinement rounds for HwRMSD when iter<=0
	MaxSimplexStep int // simplex steps per refinement round
}

// NewDefaultKernel returns a DefaultKernel with workable defaults.
func NewDefaultKernel() *DefaultKernel {
	return &DefaultKernel{
		FastRounds:     2,
		PreciseRounds:  5,
		HwRounds:       1,
		MaxSimplexStep: 60,
	}
}

// TMAlign runs the full, weighted correspondence/superposition loop.
func (k *DefaultKernel) TMAlign(q, r *chain.Record, molSum int, cutoff float64, fast bool) (Result, error) {
	rounds := k.PreciseRounds
	if fast {
		rounds = k.FastRounds
	}
	tm1, tm2, err := k.run(q, r, rounds, true)
	if err != nil {
		return Result{}, err
	}
	return Result{TM1: tm1, TM2: tm2, Hit: math.Min(tm1, tm2) >= cutoff}, nil
}

// HwRMSD runs a cheaper, unweighted pass: no re-optimization of the
// superposition weights after the correspondence is first found. iter
// overrides the kernel's default round count when positive, matching
// the iter_opt configuration knob of §6.
func (k *DefaultKernel) HwRMSD(q, r *chain.Record, molSum int, iter int) (Result, error) {
	rounds := k.HwRounds
	if iter > 0 {
		rounds = iter
	}
	tm1, tm2, err := k.run(q, r, rounds, false)
	if err != nil {
		return Result{}, err
	}
	return Result{TM1: tm1, TM2: tm2}, nil
}

// run is the shared correspondence/superposition loop behind both
// primitives. weighted selects whether the superposition fit weighs
// pairs by their current compatibility score (TMAlign) or treats them
// equally (HwRMSD).
func (k *DefaultKernel) run(q, r *chain.Record, rounds int, weighted bool) (tm1, tm2 float64, err error) {
	Lx, Ly := q.Len, r.Len
	if Lx == 0 || Ly == 0 {
		return 0, 0, fmt.Errorf("align: cannot align an empty chain (%q len %d, %q len %d)", q.ID, Lx, r.ID, Ly)
	}
	if len(q.XYZ) != Lx || len(r.XYZ) != Ly {
		return 0, 0, fmt.Errorf("align: coordinate count does not match chain length for %q/%q", q.ID, r.ID)
	}
	if rounds < 1 {
		rounds = 1
	}

	d0x, d0y := d0For(Lx), d0For(Ly)
	d0mid := (d0x + d0y) / 2

	qCtr := geom.Translate(q.XYZ, geom.Centroid(q.XYZ).Scale(-1))
	rCtr := geom.Translate(r.XYZ, geom.Centroid(r.XYZ).Scale(-1))

	pairs := proportionalPairs(Lx, Ly)
	rot := geom.Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	var trans geom.Vec

	for round := 0; round < rounds; round++ {
		rotated := geom.Superpose(qCtr, rot, trans)
		compat := compatMatrix(rotated, rCtr, q.Sec, r.Sec, d0mid)
		scheme := &gotoh.Al_score{Pnlty: gotoh.Pnlty{Open: 0.2, Wdn: 0.05}, Al_type: gotoh.Global}
		newPairs, _ := gotoh.Align(compat, scheme)
		putCompatMatrix(compat)
		filtered := filterPairs(newPairs)
		if len(filtered) == 0 {
			break
		}
		pairs = filtered

		var weights []float64
		if weighted {
			weights = pairWeights(rotated, rCtr, pairs, d0mid)
		}
		rot, trans, err = k.fitSuperposition(qCtr, rCtr, pairs, weights)
		if err != nil {
			return 0, 0, err
		}
	}

	final := geom.Superpose(qCtr, rot, trans)
	tm1 = tmScore(final, rCtr, pairs, d0x, Lx)
	tm2 = tmScore(final, rCtr, pairs, d0y, Ly)
	return tm1, tm2, nil
}

// fitSuperposition finds the rotation/translation minimizing the
// (optionally weighted) sum of squared deviations over pairs, via a
// 6-parameter simplex search seeded at the identity transform.
func (k *DefaultKernel) fitSuperposition(q, r []geom.Vec, pairs []gotoh.Pair, weights []float64) (geom.Rotation, geom.Vec, error) {
	cost := func(x []float32) (float32, error) {
		rot := geom.EulerXYZ(float64(x[0]), float64(x[1]), float64(x[2]))
		t := geom.Vec{X: float64(x[3]), Y: float64(x[4]), Z: float64(x[5])}
		var sum float64
		for idx, p := range pairs {
			w := 1.0
			if weights != nil {
				w = weights[idx]
			}
			moved := rot.Apply(q[p.I]).Add(t)
			sum += w * geom.Dist2(moved, r[p.J])
		}
		return float32(sum), nil
	}
	s := simplex.NewSplxCtrl(cost, []float32{0, 0, 0, 0, 0, 0})
	s.AbsSpread(0.5)
	maxstep := k.MaxSimplexStep
	if maxstep < 1 {
		maxstep = 60
	}
	if err := s.Run(maxstep, 1); err != nil {
		return geom.Rotation{}, geom.Vec{}, fmt.Errorf("align: superposition fit: %w", err)
	}
	best := s.BestPrm
	rot := geom.EulerXYZ(float64(best[0]), float64(best[1]), float64(best[2]))
	t := geom.Vec{X: float64(best[3]), Y: float64(best[4]), Z: float64(best[5])}
	return rot, t, nil
}

// d0For is the standard TM-score length-normalization distance, with
// the usual floor for short chains.
func d0For(L int) float64 {
	if L <= 15 {
		return 0.5
	}
	d0 := 1.24*math.Cbrt(float64(L)-15) - 1.8
	if d0 < 0.5 {
		return 0.5
	}
	return d0
}

// proportionalPairs seeds the very first correspondence by mapping
// query index i to the candidate index at the same fractional
// position, before any superposition has been found.
func proportionalPairs(Lx, Ly int) []gotoh.Pair {
	pairs := make([]gotoh.Pair, Lx)
	for i := 0; i < Lx; i++ {
		j := 0
		if Lx > 1 {
			j = int(math.Round(float64(i) * float64(Ly-1) / float64(Lx-1)))
		}
		if j >= Ly {
			j = Ly - 1
		}
		pairs[i] = gotoh.Pair{I: i, J: j}
	}
	return pairs
}

// secMatchBonus scales the distance score up when two residues share
// the same crude secondary-structure code, so the correspondence
// search prefers helix-to-helix/strand-to-strand matches over an
// equally close but structurally mismatched pairing.
const secMatchBonus = 1.1

// compatMatrix scores every (i,j) pair by the same distance kernel the
// final TM-score uses, biased by secondary-structure agreement, so the
// Gotoh correspondence search and the scoring convention agree. qSec
// and rSec may be shorter than a/b (or nil) for records whose
// secondary structure was never computed; those indices just get no
// bonus.
func compatMatrix(a, b []geom.Vec, qSec, rSec []byte, d0 float64) *matrix.FMatrix2d {
	m := getCompatMatrix(len(a), len(b))
	for i, pi := range a {
		for j, pj := range b {
			d2 := geom.Dist2(pi, pj)
			score := float32(1.0 / (1.0 + d2/(d0*d0)))
			if i < len(qSec) && j < len(rSec) && qSec[i] == rSec[j] {
				score *= secMatchBonus
			}
			m.Mat[i][j] = score
		}
	}
	return m
}

// filterPairs drops the gap entries a Gotoh alignment may introduce;
// only I,J >= 0 pairs carry a structural correspondence.
func filterPairs(in []gotoh.Pair) []gotoh.Pair {
	out := make([]gotoh.Pair, 0, len(in))
	for _, p := range in {
		if p.I >= 0 && p.J >= 0 {
			out = append(out, p)
		}
	}
	return out
}

// pairWeights returns the current compatibility score of each pair,
// used to weight the next superposition fit toward pairs that are
// already well matched.
func pairWeights(a, b []geom.Vec, pairs []gotoh.Pair, d0 float64) []float64 {
	w := make([]float64, len(pairs))
	for idx, p := range pairs {
		d2 := geom.Dist2(a[p.I], b[p.J])
		w[idx] = 1.0 / (1.0 + d2/(d0*d0))
	}
	return w
}

// tmScore sums the TM-score kernel over the final correspondence,
// normalized by Lref (the query length for TM1, the candidate length
// for TM2).
func tmScore(a, b []geom.Vec, pairs []gotoh.Pair, d0 float64, Lref int) float64 {
	if Lref == 0 {
		return 0
	}
	var sum float64
	for _, p := range pairs {
		d2 := geom.Dist2(a[p.I], b[p.J])
		sum += 1.0 / (1.0 + d2/(d0*d0))
	}
	return sum / float64(Lref)
}
