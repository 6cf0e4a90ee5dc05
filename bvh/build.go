// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package bvh

import (
	"sort"

	"gviegas/tracer/internal/bitvec"
)

// Tree is the result of a Build: the root node plus the triangle
// slice it indexes into (build never copies or reorders this
// slice; only the per-axis index lists are partitioned).
type Tree struct {
	Root  *Node
	Tris  []Triangle
	Depth int
}

// Build constructs a BVH over tris using the Surface Area
// Heuristic, per spec.md §4.1/§4.2. leafSize caps the number of
// triangles a leaf may own (LeafSize is the usual default); it must
// be >= 1. Build is total for any non-empty tris; an empty tris
// yields a single leaf with an empty box.
func Build(tris []Triangle, leafSize int) *Tree {
	if len(tris) == 0 {
		return &Tree{Root: &Node{Box: EmptyBox()}}
	}
	if leafSize < 1 {
		leafSize = 1
	}

	idx := sortedIndices(tris)
	b := &builder{tris: tris, leafSize: leafSize}
	root := b.build(idx, 0)
	return &Tree{Root: root, Tris: tris, Depth: b.maxDepth}
}

// sortedIndices returns, for each axis, the full [0,N) index range
// sorted ascending by the referenced triangle's centroid on that
// axis.
func sortedIndices(tris []Triangle) [3][]int {
	var idx [3][]int
	for a := 0; a < 3; a++ {
		order := make([]int, len(tris))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(i, j int) bool {
			return tris[order[i]].Centroid()[a] < tris[order[j]].Centroid()[a]
		})
		idx[a] = order
	}
	return idx
}

type builder struct {
	tris     []Triangle
	leafSize int
	maxDepth int
}

// build recurses over idx (three axis-sorted index lists of the
// same N triangle indices), returning the subtree root.
func (b *builder) build(idx [3][]int, depth int) *Node {
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	n := len(idx[0])
	box := b.boxOf(idx[0])

	if n <= b.leafSize {
		return &Node{Box: box, Tris: append([]int(nil), idx[0]...)}
	}

	sp := selectSplit(b.tris, idx, box.SurfaceArea())
	if sp.axis < 0 || sp.index <= 0 || sp.index >= n {
		// Degenerate (e.g. all centroids coincide): fall back to a
		// leaf rather than looping forever on a zero-size split.
		return &Node{Box: box, Tris: append([]int(nil), idx[0]...)}
	}

	leftIdx, rightIdx := partition(idx, sp.axis, sp.index)

	left := b.build(leftIdx, depth+1)
	right := b.build(rightIdx, depth+1)

	return &Node{
		Box:        box,
		Left:       left,
		Right:      right,
		SplitAxis:  sp.axis,
		SplitIndex: sp.index,
	}
}

func (b *builder) boxOf(order []int) Box {
	box := EmptyBox()
	for _, i := range order {
		t := b.tris[i].Box()
		box.Add(&box, &t)
	}
	return box
}

// partition splits idx at position k along axis, producing three
// new index lists per side. The split axis is sliced directly; the
// other two axes preserve their existing sort order by a single
// left-to-right scan classifying each index via a bit-vector of
// left-partition membership (spec.md §9: replaces a hash-set for
// better locality), appending to the matching side's list.
func partition(idx [3][]int, axis, k int) (left, right [3][]int) {
	n := len(idx[0])

	var inLeft bitvec.V[uint64]
	maxIndex := 0
	for _, i := range idx[axis] {
		if i > maxIndex {
			maxIndex = i
		}
	}
	inLeft.Grow((maxIndex)/64 + 1)
	for _, i := range idx[axis][:k] {
		inLeft.Set(i)
	}

	left[axis] = idx[axis][:k:k]
	right[axis] = idx[axis][k:n:n]

	for a := 0; a < 3; a++ {
		if a == axis {
			continue
		}
		l := make([]int, 0, k)
		r := make([]int, 0, n-k)
		for _, i := range idx[a] {
			if inLeft.IsSet(i) {
				l = append(l, i)
			} else {
				r = append(r, i)
			}
		}
		left[a], right[a] = l, r
	}
	return
}
