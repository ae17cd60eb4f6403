// 28 dec 2019

package simplex_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	. "github.com/GRAPH-0/USalign-parallel/simplex"
)

// slicesDiffer returns true if two slices are not approximately the same.
// The definition of approximately is arbitrary. It is just enough
// for testing.
func slicesDiffer(x, y []float32) bool {
	const eps = 0.001
	if len(x) != len(y) {
		panic("program bug slice lengths differ")
	}
	for i, v := range x {
		if math.Abs(float64(v-y[i])) > eps {
			return true
		}
	}
	return false
}

func costbounds(x []float32) (float32, error) {
	a := x[0] - 3
	return a * a, nil
}

// TestUpper tests upper bounds. The minimum is at 3, but the upper
// bound stops it going beyond 2.
func TestUpper(t *testing.T) {
	const ubound float32 = 2
	iniPrm := []float32{1}
	s := NewSplxCtrl(costbounds, iniPrm)
	if err := s.AddBounds(nil, []float32{ubound}); err != nil {
		t.Fatalf("AddBounds: %v", err)
	}
	if err := s.Run(300, 1); err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.BestPrm[0] > ubound+0.01 {
		t.Errorf("TestUpper got %v, want <= %v", s.BestPrm[0], ubound)
	}
}

// cost2 is a two parameter cost function, (x-1)^2 + (y-5)^2.
func cost2(x []float32) (float32, error) {
	a := x[0] - 1
	b := x[1] - 5
	return a*a + b*b, nil
}

func TestSimplexStruct(t *testing.T) {
	const a float32 = 5
	const b float32 = 5.1
	rr := rand.New(rand.NewSource(39499))
	noise50 := func(x float32) float32 {
		fnoise := rr.Float32() - 0.5
		return fnoise*x + x
	}
	correct := []float32{1, 5}
	for i := 0; i < 10; i++ {
		iniPrm := []float32{noise50(a), noise50(b)}
		s := NewSplxCtrl(cost2, iniPrm)
		if err := s.Run(200, 2); err != nil {
			t.Errorf("run failed: %v", err)
		}
		if slicesDiffer(correct, s.BestPrm) {
			t.Errorf("simplex got %v wanted %v starting from %v repetition %v",
				s.BestPrm, correct, iniPrm, i)
		}
	}
}

// costN puts minima at 1, 2, 3, ... in n dimensions.
func costN(x []float32) (float32, error) {
	var sum float32
	for i := 0; i < len(x); i++ {
		d := x[i] - float32(i+1)
		sum += d * d
	}
	return sum, nil
}

// TestNDim is for an n-dimensional simplex where n is something like seven.
func TestNDim(t *testing.T) {
	iniPrm := []float32{10, 9, 8, 7, 6, 5, 4}
	s := NewSplxCtrl(costN, iniPrm)
	if err := s.Run(800, 1); err != nil {
		t.Errorf("run failure in 7 dimensional test: %v", err)
	}
	if slicesDiffer(s.BestPrm, []float32{1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("7 dimensional test got %v", s.BestPrm)
	}
}

// TestSetupErr makes sure we flag an error when bounds of the wrong
// dimension are supplied.
func TestSetupErr(t *testing.T) {
	s := NewSplxCtrl(costN, []float32{1, 2, 3})
	if err := s.AddBounds([]float32{1, 2, 3, 4}, nil); err == nil {
		t.Errorf("slice check failed")
	}
}

func costerr([]float32) (float32, error) {
	return 1, fmt.Errorf("artificial error to check code")
}

// TestCostErr checks if errors really get passed back from the cost function.
func TestCostErr(t *testing.T) {
	iniPrm := []float32{1, 1, 1}
	s := NewSplxCtrl(costerr, iniPrm)
	if err := s.Run(10, 2); err == nil {
		t.Errorf("should have passed error back to caller")
	}
}

func costlinear(x []float32) (float32, error) {
	if x[0] < 0 {
		return -2.0 * x[0], nil
	}
	return x[0], nil
}

func TestA1(t *testing.T) {
	iniPrm := []float32{-1}
	s := NewSplxCtrl(costlinear, iniPrm)
	if err := s.Run(100, 1); err != nil {
		t.Fatalf("run: %v", err)
	}
	if slicesDiffer(s.BestPrm, []float32{0}) {
		t.Errorf("testA1 got %v not zero", s.BestPrm)
	}
}

func multilinear(x []float32) (float32, error) {
	var sum float32
	for _, v := range x {
		if v < 0 {
			sum += -2.0 * v
		} else {
			sum += v
		}
	}
	return sum, nil
}

func TestA2(t *testing.T) {
	iniPrm := []float32{-1, 5, -10}
	s := NewSplxCtrl(multilinear, iniPrm)
	s.Tol(0.001)
	if err := s.Run(100, 2); err != nil {
		t.Fatalf("run: %v", err)
	}
	zeroes := make([]float32, len(iniPrm))
	if slicesDiffer(s.BestPrm, zeroes) {
		t.Errorf("testA2 got %v not zeroes", s.BestPrm)
	}
}

func innerlinear(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// TestDimensions checks indexing stays correct as the "important"
// dimension moves around, not that many dimensions work per se.
func TestDimensions(t *testing.T) {
	const (
		ndim        int     = 5
		iniPrmRange         = 20
		eps         float64 = 0.01
	)
	for i := 0; i < ndim; i++ {
		iniPrm := make([]float32, ndim)
		for j := range iniPrm {
			iniPrm[j] = (rand.Float32() - 0.5) * iniPrmRange
		}
		cost := func(x []float32) (float32, error) {
			return innerlinear(x[i]), nil
		}
		s := NewSplxCtrl(cost, iniPrm)
		if err := s.Run(100, 2); err != nil {
			t.Fatalf("run: %v", err)
		}
		if math.Abs(float64(s.BestPrm[i])) > eps {
			t.Errorf("TestDimensions dimension %d should be near 0.0, got %f",
				i, s.BestPrm[i])
		}
	}
}
