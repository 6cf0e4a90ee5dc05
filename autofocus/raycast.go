// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package autofocus implements the CPU-side BVH traversal that
// probes scene depth along the camera's view direction, driving the
// lens model's focal-depth and aperture shader inputs.
package autofocus

import (
	"math"

	"gviegas/tracer/bvh"
	"gviegas/tracer/linear"
)

// MaxT is the sentinel distance returned on a miss.
const MaxT = 1e6

const epsilon = 1e-12

// Ray is a traversal query: an origin, a direction (not required to
// be normalized) and its precomputed componentwise reciprocal.
type Ray struct {
	Origin, Dir, InvDir linear.V3
}

// NewRay builds a Ray from an origin and direction, precomputing
// InvDir for the slab test.
func NewRay(origin, dir linear.V3) Ray {
	var inv linear.V3
	inv.Inverse(&dir)
	return Ray{Origin: origin, Dir: dir, InvDir: inv}
}

// Hit is a Möller–Trumbore closest-hit result.
type Hit struct {
	T    float32
	Tri  *bvh.Triangle
	U, V float32 // barycentric coordinates of the hit point
}

// slab returns the ray/box entry distance (tmin) per the slab
// method of spec.md §4.6, and whether the ray hits the box at all
// (tmax >= tmin && tmax >= 0).
func slab(r *Ray, b *bvh.Box) (tmin float32, hit bool) {
	t1 := componentMul(sub(b.Min, r.Origin), r.InvDir)
	t2 := componentMul(sub(b.Max, r.Origin), r.InvDir)

	// tmin = max over axes of the per-axis near slab entry;
	// tmax = min over axes of the per-axis far slab entry.
	tmn := reduce3(minComp(t1[0], t2[0]), minComp(t1[1], t2[1]), minComp(t1[2], t2[2]), true)
	tmx := reduce3(maxComp(t1[0], t2[0]), maxComp(t1[1], t2[1]), maxComp(t1[2], t2[2]), false)

	return tmn, tmx >= tmn && tmx >= 0
}

func sub(a, b linear.V3) linear.V3 {
	var v linear.V3
	v.Sub(&a, &b)
	return v
}

func componentMul(a, b linear.V3) linear.V3 {
	return linear.V3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func minComp(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxComp(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// reduce3 folds three per-axis slab extrema into the scalar
// tmin/tmax; takeMax selects which reduction to perform, named this
// way (rather than two separate helpers) because both call sites
// share the same three-argument shape.
func reduce3(a, b, c float32, takeMax bool) float32 {
	if takeMax {
		m := a
		if b > m {
			m = b
		}
		if c > m {
			m = c
		}
		return m
	}
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// triangleHit implements Möller–Trumbore ray/triangle intersection.
func triangleHit(r *Ray, tri *bvh.Triangle) (t, u, v float32, ok bool) {
	e1 := sub(tri.Verts[1], tri.Verts[0])
	e2 := sub(tri.Verts[2], tri.Verts[0])

	var pvec linear.V3
	pvec.Cross(&r.Dir, &e2)
	det := e1.Dot(&pvec)
	if det < epsilon {
		return 0, 0, 0, false // parallel or back-facing beyond tolerance
	}
	invDet := 1 / det

	tvec := sub(r.Origin, tri.Verts[0])
	u = tvec.Dot(&pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	var qvec linear.V3
	qvec.Cross(&tvec, &e1)
	v = r.Dir.Dot(&qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(&qvec) * invDet
	if t <= epsilon {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// Cast walks tree front-to-back from r, pruning subtrees whose
// slab entry is no closer than the current closest hit, and
// returns the closest Möller–Trumbore intersection. A miss (no
// triangle hit) returns Hit{T: MaxT}.
func Cast(tree *bvh.Tree, r Ray) Hit {
	best := Hit{T: MaxT}
	if tree.Root == nil {
		return best
	}
	walk(tree.Root, tree.Tris, &r, &best)
	return best
}

func walk(n *bvh.Node, tris []bvh.Triangle, r *Ray, best *Hit) {
	tEntry, hit := slab(r, &n.Box)
	if !hit || tEntry >= best.T {
		return
	}

	if n.Leaf() {
		for _, i := range n.Tris {
			tri := &tris[i]
			if t, u, v, ok := triangleHit(r, tri); ok && t < best.T {
				*best = Hit{T: t, Tri: tri, U: u, V: v}
			}
		}
		return
	}

	tl, hl := slab(r, &n.Left.Box)
	tr, hr := slab(r, &n.Right.Box)

	switch {
	case hl && hr:
		if tl <= tr {
			walk(n.Left, tris, r, best)
			if tr < best.T {
				walk(n.Right, tris, r, best)
			}
		} else {
			walk(n.Right, tris, r, best)
			if tl < best.T {
				walk(n.Left, tris, r, best)
			}
		}
	case hl:
		walk(n.Left, tris, r, best)
	case hr:
		walk(n.Right, tris, r, best)
	}
}

// Probe casts a ray from eye along dir and reports the focal depth
// and lens-feature pair the camera should adopt, per spec.md §4.6's
// final paragraph. A miss leaves focalDepth at +Inf, matching the
// error-handling design's "non-fatal and silent" ray-miss sentinel.
func Probe(tree *bvh.Tree, eye, dir linear.V3, aperture float32) (focalDepth float32, lensFeature [2]float32) {
	hit := Cast(tree, NewRay(eye, dir))
	if hit.T >= MaxT {
		return float32(math.Inf(1)), [2]float32{1, aperture}
	}
	return hit.T, [2]float32{1 - 1/hit.T, aperture}
}
