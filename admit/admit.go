// Package admit implements the pure-arithmetic admissibility test that
// decides, from lengths and molecule types alone, whether a (query,
// representative) pair can possibly reach a TM-score cutoff under a
// chosen composite normalization rule, before any alignment runs.
package admit

// Admissible reports whether a pair with query length xlen, candidate
// length ylen, molecule-type signs molX/molY, cutoff T and composite
// rule s ∈ {1..6} can possibly clear the cutoff. Cross molecule-type
// pairs are never admissible.
func Admissible(xlen, ylen int, molX, molY int, T float64, s int) bool {
	if molX*molY < 0 {
		return false
	}
	x, y := float64(xlen), float64(ylen)
	switch s {
	case 1: // larger of TM1,TM2: no length condition can rule it out
		return true
	case 2: // smaller of TM1,TM2 (normalize by longer)
		return x >= T*y
	case 3: // arithmetic mean
		return x >= (2*T-1)*y
	case 4: // harmonic mean
		return x*(2/T-1) >= y
	case 5: // geometric mean
		return x >= T*T*y
	case 6: // root-mean-square
		return x*x >= (2*T*T-1)*y*y
	default:
		return true
	}
}
