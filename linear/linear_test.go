// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"math"
	"testing"
)

func TestV3(t *testing.T) {
	v := V3{1, 2, 4}
	w := V3{0, -1, 2}

	var add V3
	add.Add(&v, &w)
	if add != (V3{1, 1, 6}) {
		t.Fatalf("V3.Add\nhave %v\nwant [1 1 6]", add)
	}

	var sub V3
	sub.Sub(&v, &w)
	if sub != (V3{1, 3, 2}) {
		t.Fatalf("V3.Sub\nhave %v\nwant [1 3 2]", sub)
	}

	var scale V3
	scale.Scale(-1, &v)
	if scale != (V3{-1, -2, -4}) {
		t.Fatalf("V3.Scale\nhave %v\nwant [-1 -2 -4]", scale)
	}

	if d := v.Dot(&w); d != 6 {
		t.Fatalf("V3.Dot\nhave %v\nwant 6", d)
	}
	if d := v.Dot(&v); d != 21 {
		t.Fatalf("V3.Dot\nhave %v\nwant 21", d)
	}

	var cr V3
	cr.Cross(&V3{1, 0, 0}, &V3{0, 1, 0})
	if cr != (V3{0, 0, 1}) {
		t.Fatalf("V3.Cross\nhave %v\nwant [0 0 1]", cr)
	}
}

func TestV3Len(t *testing.T) {
	v := V3{3, 4, 0}
	if l := v.Len(); l != 5 {
		t.Fatalf("V3.Len\nhave %v\nwant 5", l)
	}
	var n V3
	n.Norm(&v)
	if l := n.Len(); math.Abs(float64(l-1)) > 1e-6 {
		t.Fatalf("V3.Norm\nhave length %v\nwant 1", l)
	}
}

func TestV3Lerp(t *testing.T) {
	l, r := V3{0, 0, 0}, V3{2, 4, 8}
	var mid V3
	mid.Lerp(&l, &r, 0.5)
	if mid != (V3{1, 2, 4}) {
		t.Fatalf("V3.Lerp\nhave %v\nwant [1 2 4]", mid)
	}
	var zero, one V3
	zero.Lerp(&l, &r, 0)
	one.Lerp(&l, &r, 1)
	if zero != l || one != r {
		t.Fatalf("V3.Lerp at t=0/t=1\nhave %v, %v\nwant %v, %v", zero, one, l, r)
	}
}

func TestV3MinMax(t *testing.T) {
	l, r := V3{1, -2, 3}, V3{-4, 5, 0}
	var mn, mx V3
	mn.Min(&l, &r)
	mx.Max(&l, &r)
	if mn != (V3{-4, -2, 0}) {
		t.Fatalf("V3.Min\nhave %v\nwant [-4 -2 0]", mn)
	}
	if mx != (V3{1, 5, 3}) {
		t.Fatalf("V3.Max\nhave %v\nwant [1 5 3]", mx)
	}
}

func TestV3Inverse(t *testing.T) {
	var inv V3
	inv.Inverse(&V3{2, 4, -1})
	want := V3{0.5, 0.25, -1}
	if inv != want {
		t.Fatalf("V3.Inverse\nhave %v\nwant %v", inv, want)
	}
}

func TestV3RotateAxis(t *testing.T) {
	var r V3
	r.RotateAxis(&V3{1, 0, 0}, &V3{0, 0, 1}, math.Pi/2)
	want := V3{0, 1, 0}
	for i := range r {
		if math.Abs(float64(r[i]-want[i])) > 1e-5 {
			t.Fatalf("V3.RotateAxis\nhave %v\nwant %v", r, want)
		}
	}
}

func TestM4(t *testing.T) {
	var i M4
	i.I()
	var v V4
	w := V4{1, 2, 3, 1}
	v.Mul(&i, &w)
	if v != w {
		t.Fatalf("M4.Mul with identity\nhave %v\nwant %v", v, w)
	}
}

func TestM4Invert(t *testing.T) {
	var m, inv, prod M4
	m.I()
	m[3] = V4{5, -3, 2, 1}
	inv.Invert(&m)
	prod.Mul(&m, &inv)
	var id M4
	id.I()
	for i := range prod {
		for j := range prod[i] {
			if math.Abs(float64(prod[i][j]-id[i][j])) > 1e-4 {
				t.Fatalf("M4.Invert\nhave m*inv(m) = %v\nwant identity", prod)
			}
		}
	}
}
