// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package autofocus

import (
	"math"
	"testing"

	"gviegas/tracer/bvh"
	"gviegas/tracer/linear"
)

func unitTri() bvh.Triangle {
	verts := [3]linear.V3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	uvs := [3][2]float32{{0, 0}, {1, 0}, {0, 1}}
	n := linear.V3{0, 0, 1}
	norms := [3]linear.V3{n, n, n}
	t := linear.V3{1, 0, 0}
	tans := [3]linear.V3{t, t, t}
	b := linear.V3{0, 1, 0}
	bitans := [3]linear.V3{b, b, b}
	return bvh.NewTriangle(verts, uvs, norms, tans, bitans)
}

// TestCastHitDistance is scenario S4 of spec.md §8: a ray cast from
// (0.25, 0.25, 1) along (0, 0, -1) against the S1 single-triangle
// scene must report a hit at distance 1.
func TestCastHitDistance(t *testing.T) {
	tri := unitTri()
	tree := bvh.Build([]bvh.Triangle{tri}, bvh.LeafSize)

	r := NewRay(linear.V3{0.25, 0.25, 1}, linear.V3{0, 0, -1})
	hit := Cast(tree, r)

	if hit.Tri == nil {
		t.Fatal("expected a hit, got a miss")
	}
	const want = 1.0
	if diff := hit.T - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("hit distance\nhave %v\nwant %v ± 1e-6", hit.T, want)
	}
}

func TestCastMissReturnsMaxT(t *testing.T) {
	tri := unitTri()
	tree := bvh.Build([]bvh.Triangle{tri}, bvh.LeafSize)

	r := NewRay(linear.V3{5, 5, 1}, linear.V3{0, 0, -1})
	hit := Cast(tree, r)

	if hit.Tri != nil {
		t.Fatalf("expected a miss, got a hit at %v", hit.T)
	}
	if hit.T != MaxT {
		t.Fatalf("miss distance\nhave %v\nwant %v", hit.T, MaxT)
	}
}

func TestSlabSymmetry(t *testing.T) {
	b := bvh.Box{Min: linear.V3{-1, -1, -1}, Max: linear.V3{1, 1, 1}}

	forward := NewRay(linear.V3{0, 0, 5}, linear.V3{0, 0, -1})
	tmin, hit := slab(&forward, &b)
	if !hit {
		t.Fatal("expected forward ray to hit the box")
	}
	if diff := tmin - 4; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("forward tmin\nhave %v\nwant 4", tmin)
	}

	backward := NewRay(linear.V3{0, 0, -5}, linear.V3{0, 0, 1})
	tmin, hit = slab(&backward, &b)
	if !hit {
		t.Fatal("expected backward ray to hit the box")
	}
	if diff := tmin - 4; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("backward tmin\nhave %v\nwant 4", tmin)
	}
}

func TestSlabMiss(t *testing.T) {
	b := bvh.Box{Min: linear.V3{-1, -1, -1}, Max: linear.V3{1, 1, 1}}
	r := NewRay(linear.V3{5, 5, 5}, linear.V3{0, 0, -1})
	if _, hit := slab(&r, &b); hit {
		t.Fatal("expected ray aimed away from the box to miss")
	}
}

// TestTriangleHitCentroid checks Möller–Trumbore accuracy for a ray
// aimed at a triangle's centroid, within 1e-6 relative tolerance.
func TestTriangleHitCentroid(t *testing.T) {
	tri := unitTri()
	centroid := tri.Centroid()

	r := NewRay(linear.V3{centroid[0], centroid[1], 3}, linear.V3{0, 0, -1})
	tt, u, v, ok := triangleHit(&r, &tri)
	if !ok {
		t.Fatal("expected a hit at the triangle's centroid")
	}
	const want = 3.0
	if rel := math.Abs(float64(tt-want) / want); rel > 1e-6 {
		t.Fatalf("hit distance\nhave %v\nwant %v (rel err %v)", tt, want, rel)
	}
	if u < 0 || v < 0 || u+v > 1 {
		t.Fatalf("barycentric coords out of range: u=%v v=%v", u, v)
	}
}

func TestTriangleHitMissesOutsideEdges(t *testing.T) {
	tri := unitTri()
	r := NewRay(linear.V3{10, 10, 3}, linear.V3{0, 0, -1})
	if _, _, _, ok := triangleHit(&r, &tri); ok {
		t.Fatal("expected a miss for a ray outside the triangle's edges")
	}
}

func TestProbeMissReturnsInf(t *testing.T) {
	tri := unitTri()
	tree := bvh.Build([]bvh.Triangle{tri}, bvh.LeafSize)

	depth, lens := Probe(tree, linear.V3{5, 5, 1}, linear.V3{0, 0, -1}, 0.1)
	if !math.IsInf(float64(depth), 1) {
		t.Fatalf("focalDepth\nhave %v\nwant +Inf", depth)
	}
	if lens[1] != 0.1 {
		t.Fatalf("lensFeature aperture\nhave %v\nwant 0.1", lens[1])
	}
}

func TestProbeHit(t *testing.T) {
	tri := unitTri()
	tree := bvh.Build([]bvh.Triangle{tri}, bvh.LeafSize)

	depth, _ := Probe(tree, linear.V3{0.25, 0.25, 1}, linear.V3{0, 0, -1}, 0.1)
	if diff := depth - 1.0; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("focalDepth\nhave %v\nwant 1.0 ± 1e-6", depth)
	}
}
