// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package linear implements math for 3D graphics.
package linear

import (
	"math"
)

// V3 is a 3-component vector of float32.
type V3 [3]float32

// Add sets v to contain l + r.
func (v *V3) Add(l, r *V3) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Sub sets v to contain l - r.
func (v *V3) Sub(l, r *V3) {
	for i := range v {
		v[i] = l[i] - r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *V3) Scale(s float32, w *V3) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Dot returns v ⋅ w.
func (v *V3) Dot(w *V3) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// Len returns the length of v.
func (v *V3) Len() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Norm sets v to contain w normalized.
func (v *V3) Norm(w *V3) { v.Scale(1/w.Len(), w) }

// Cross sets v to contain l × r.
func (v *V3) Cross(l, r *V3) {
	v[0] = l[1]*r[2] - l[2]*r[1]
	v[1] = l[2]*r[0] - l[0]*r[2]
	v[2] = l[0]*r[1] - l[1]*r[0]
	return
}

// Mul sets v to contain m ⋅ w.
func (v *V3) Mul(m *M3, w *V3) {
	*v = V3{}
	for i := range v {
		for j := range v {
			v[i] += m[j][i] * w[j]
		}
	}
}

// Lerp sets v to contain the linear interpolation of l and r
// at parameter t (t = 0 yields l; t = 1 yields r).
func (v *V3) Lerp(l, r *V3, t float32) {
	for i := range v {
		v[i] = l[i] + (r[i]-l[i])*t
	}
}

// Min sets v to contain the componentwise minimum of l and r.
func (v *V3) Min(l, r *V3) {
	for i := range v {
		if l[i] < r[i] {
			v[i] = l[i]
		} else {
			v[i] = r[i]
		}
	}
}

// Max sets v to contain the componentwise maximum of l and r.
func (v *V3) Max(l, r *V3) {
	for i := range v {
		if l[i] > r[i] {
			v[i] = l[i]
		} else {
			v[i] = r[i]
		}
	}
}

// Inverse sets v to contain the componentwise reciprocal of w.
// Components of w that equal zero yield +Inf (matching the
// slab-method's convention for ray/box intersection).
func (v *V3) Inverse(w *V3) {
	for i := range v {
		v[i] = 1 / w[i]
	}
}

// RotateAxis sets v to contain w rotated by theta radians about
// the given unit axis, using Rodrigues' rotation formula.
func (v *V3) RotateAxis(w, axis *V3, theta float32) {
	s, c := float32(math.Sin(float64(theta))), float32(math.Cos(float64(theta)))
	var cr, t1, t2 V3
	cr.Cross(axis, w)
	t1.Scale(c, w)
	t2.Scale(s, &cr)
	t1.Add(&t1, &t2)
	d := axis.Dot(w)
	t2.Scale(d*(1-c), axis)
	v.Add(&t1, &t2)
}

// V4 is a 4-component vector of float32.
type V4 [4]float32

// Add sets v to contain l + r.
func (v *V4) Add(l, r *V4) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Sub sets v to contain l - r.
func (v *V4) Sub(l, r *V4) {
	for i := range v {
		v[i] = l[i] - r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *V4) Scale(s float32, w *V4) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Dot returns v ⋅ w.
func (v *V4) Dot(w *V4) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// Len returns the length of v.
func (v *V4) Len() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Norm sets v to contain w normalized.
func (v *V4) Norm(w *V4) { v.Scale(1/w.Len(), w) }

// Mul sets v to contain m ⋅ w.
func (v *V4) Mul(m *M4, w *V4) {
	*v = V4{}
	for i := range v {
		for j := range v {
			v[i] += m[j][i] * w[j]
		}
	}
}
