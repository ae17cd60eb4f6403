package align

import "github.com/GRAPH-0/USalign-parallel/geom"

// CompatMatrix exposes compatMatrix so its secondary-structure bonus
// can be checked directly without driving a whole TMAlign run.
func CompatMatrix(a, b []geom.Vec, qSec, rSec []byte, d0 float64) [][]float32 {
	return compatMatrix(a, b, qSec, rSec, d0).Mat
}
