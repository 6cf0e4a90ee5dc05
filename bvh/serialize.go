// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package bvh

import "math"

// Record is one serialized BVH node, per spec.md §3: the first
// three cells carry integer semantics (bitcast, not numeric
// conversion — see IntBits/FromIntBits), the remaining six carry
// float semantics.
type Record struct {
	Left, Right  int32 // -1 for leaves
	TriangleBase int32 // -1 for internal nodes
	BoundsMin    [3]float32
	BoundsMax    [3]float32
}

// Serialize walks t depth-first preorder, assigning each node its
// visit ordinal, and returns the flat record array (root at index
// 0) per spec.md §4.3. Leaf triangles are written into orderedTris in
// leaf-visit order; TriangleBase is the running count of triangles
// emitted by earlier leaves.
func Serialize(t *Tree) (records []Record, orderedTris []Triangle) {
	if t.Root == nil {
		return nil, nil
	}
	s := &serializer{tris: t.Tris}
	s.visit(t.Root)
	return s.records, s.ordered
}

type serializer struct {
	tris    []Triangle
	records []Record
	ordered []Triangle
}

// visit serializes the subtree rooted at n and returns its ordinal.
func (s *serializer) visit(n *Node) int {
	ord := len(s.records)
	s.records = append(s.records, Record{}) // reserve the slot

	rec := Record{BoundsMin: n.Box.Min, BoundsMax: n.Box.Max}

	if n.Leaf() {
		rec.Left, rec.Right = -1, -1
		rec.TriangleBase = int32(len(s.ordered))
		for _, i := range n.Tris {
			s.ordered = append(s.ordered, s.tris[i])
		}
	} else {
		rec.TriangleBase = -1
		leftOrd := s.visit(n.Left)
		rightOrd := s.visit(n.Right)
		rec.Left = int32(leftOrd)
		rec.Right = int32(rightOrd)
	}

	s.records[ord] = rec
	return ord
}

// IntBits reinterprets x's bit pattern as a float32, the way the
// serializer must encode a Record's integer cells: the consuming
// GPU shader decodes the same cell with a symmetric float->int
// bitcast, so a numeric float(x) conversion here would corrupt
// every non-trivial ordinal.
func IntBits(x int32) float32 {
	return math.Float32frombits(uint32(x))
}

// FromIntBits is the inverse of IntBits.
func FromIntBits(f float32) int32 {
	return int32(math.Float32bits(f))
}

// Floats lays out r as the 9 float32 cells of spec.md §3's
// bvhBuffer record: the first three integer-semantic cells via
// IntBits, the remaining six as-is.
func (r Record) Floats() [9]float32 {
	return [9]float32{
		IntBits(r.Left), IntBits(r.Right), IntBits(r.TriangleBase),
		r.BoundsMin[0], r.BoundsMin[1], r.BoundsMin[2],
		r.BoundsMax[0], r.BoundsMax[1], r.BoundsMax[2],
	}
}
