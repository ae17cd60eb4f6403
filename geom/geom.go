// Package geom provides the small set of vector and rigid-body
// geometry operations the alignment kernels need: distances, angles,
// dihedrals, centroids and rotation/translation of a coordinate set.
// It has no knowledge of chains, sequences or TM-scores; it only knows
// about points in space.
package geom

import "math"

// Vec is a point or vector in three dimensions.
type Vec struct{ X, Y, Z float64 }

// Sub returns a-b.
func (a Vec) Sub(b Vec) Vec { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Add returns a+b.
func (a Vec) Add(b Vec) Vec { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Scale returns a scaled by f.
func (a Vec) Scale(f float64) Vec { return Vec{a.X * f, a.Y * f, a.Z * f} }

// Dot returns the scalar product of a and b.
func (a Vec) Dot(b Vec) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns the vector product of a and b.
func (a Vec) Cross(b Vec) Vec {
	return Vec{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len2 returns the squared length of v.
func (v Vec) Len2() float64 { return v.Dot(v) }

// Len returns the length of v.
func (v Vec) Len() float64 { return math.Sqrt(v.Len2()) }

// Dist2 returns the squared distance between a and b, cheaper than Dist
// when only a comparison against a threshold is needed.
func Dist2(a, b Vec) float64 { return a.Sub(b).Len2() }

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec) float64 { return math.Sqrt(Dist2(a, b)) }

// Angle returns the angle in radians at vertex b, between the rays
// b->a and b->c. Returns NaN if either ray has zero length.
func Angle(a, b, c Vec) float64 {
	u := a.Sub(b)
	v := c.Sub(b)
	denom := u.Len() * v.Len()
	if denom == 0 {
		return math.NaN()
	}
	cosT := u.Dot(v) / denom
	if cosT > 1 {
		cosT = 1
	} else if cosT < -1 {
		cosT = -1
	}
	return math.Acos(cosT)
}

// Dihedral returns the signed dihedral angle defined by four points
// i-j-k-l, following the same convention as a backbone phi/psi angle.
func Dihedral(i, j, k, l Vec) float64 {
	rij := j.Sub(i)
	rkj := j.Sub(k)
	rkl := l.Sub(k)

	proj := func(r, axis Vec) Vec {
		t := r.Dot(axis) / axis.Len2()
		return r.Sub(axis.Scale(t))
	}
	rim := proj(rij, rkj)
	rln := proj(rkl, rkj).Scale(-1)

	denom := rim.Len() * rln.Len()
	if denom == 0 {
		return 0
	}
	cosT := rim.Dot(rln) / denom
	if cosT > 1 {
		return 0
	}
	if cosT < -1 {
		return math.Pi
	}
	tau := math.Acos(cosT)
	if rij.Dot(rkj.Cross(rkl)) >= 0 {
		return tau
	}
	return -tau
}

// Centroid returns the mean position of a set of points. It returns
// the zero vector for an empty slice.
func Centroid(pts []Vec) Vec {
	if len(pts) == 0 {
		return Vec{}
	}
	var sum Vec
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}

// Translate returns a copy of pts shifted by d.
func Translate(pts []Vec, d Vec) []Vec {
	out := make([]Vec, len(pts))
	for i, p := range pts {
		out[i] = p.Add(d)
	}
	return out
}

// Rotation is a 3x3 rotation matrix built from Euler angles, used by
// the simplex-driven superposition search in package align.
type Rotation [3][3]float64

// EulerXYZ builds a rotation matrix from three Euler angles (radians),
// applied in X, then Y, then Z order.
func EulerXYZ(rx, ry, rz float64) Rotation {
	sx, cx := math.Sin(rx), math.Cos(rx)
	sy, cy := math.Sin(ry), math.Cos(ry)
	sz, cz := math.Sin(rz), math.Cos(rz)

	rX := Rotation{{1, 0, 0}, {0, cx, -sx}, {0, sx, cx}}
	rY := Rotation{{cy, 0, sy}, {0, 1, 0}, {-sy, 0, cy}}
	rZ := Rotation{{cz, -sz, 0}, {sz, cz, 0}, {0, 0, 1}}
	return rZ.Mul(rY.Mul(rX))
}

// Mul returns the matrix product r*other.
func (r Rotation) Mul(other Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += r[i][k] * other[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// Apply rotates v by r.
func (r Rotation) Apply(v Vec) Vec {
	return Vec{
		r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

// Superpose rotates and translates every point in pts by r then d.
func Superpose(pts []Vec, r Rotation, d Vec) []Vec {
	out := make([]Vec, len(pts))
	for i, p := range pts {
		out[i] = r.Apply(p).Add(d)
	}
	return out
}
