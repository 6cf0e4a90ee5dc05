// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package bvh implements a Bounding Volume Hierarchy over a
// triangle set, built with the Surface Area Heuristic, and its
// serialization into a linear, pointer-free array suitable for
// GPU texture lookup.
package bvh

import "gviegas/tracer/linear"

// Box is an axis-aligned bounding box.
// The zero value is the degenerate box at the origin, not an empty
// one; EmptyBox returns the empty box (Min holds 1e30, Max holds
// -1e30 in every component), suitable for additive construction
// via Add.
type Box struct {
	Min, Max linear.V3
}

const inf = float32(1e30)

// EmptyBox returns the identity element for Box.Add: a box whose
// Min/Max are set so that unioning it with any other box yields
// that other box unchanged.
func EmptyBox() Box {
	return Box{
		Min: linear.V3{inf, inf, inf},
		Max: linear.V3{-inf, -inf, -inf},
	}
}

// Add sets b to the union of l and r.
func (b *Box) Add(l, r *Box) {
	b.Min.Min(&l.Min, &r.Min)
	b.Max.Max(&l.Max, &r.Max)
}

// AddPoint extends b so that it also contains p.
func (b *Box) AddPoint(p *linear.V3) {
	b.Min.Min(&b.Min, p)
	b.Max.Max(&b.Max, p)
}

// Empty reports whether b contains no points.
func (b *Box) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// SurfaceArea returns the surface area of b.
// It returns 0 for an empty box.
func (b *Box) SurfaceArea() float32 {
	if b.Empty() {
		return 0
	}
	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	dz := b.Max[2] - b.Min[2]
	return 2 * (dx*dy + dx*dz + dy*dz)
}

// Centroid returns the midpoint of b.
func (b *Box) Centroid() linear.V3 {
	var c linear.V3
	c.Add(&b.Min, &b.Max)
	c.Scale(0.5, &c)
	return c
}
