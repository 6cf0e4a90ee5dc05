// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package bvh

import (
	"gviegas/tracer/linear"
	"gviegas/tracer/material"
)

// Triangle is the primitive carried by a Node leaf.
// Its bounding box and centroid are computed at construction from
// its three vertex positions and recomputed only by Transform, the
// one method that moves the vertices.
//
// Mat is shared by every triangle of the same material group; the
// per-prop Transforms overrides of spec.md §4.5 are folded into
// Mat once, by material.Resolve, at scene-compile time, so no
// per-triangle override record is carried here.
type Triangle struct {
	Verts      [3]linear.V3
	UVs        [3][2]float32
	Normals    [3]linear.V3
	Tangents   [3]linear.V3
	Bitangents [3]linear.V3
	Mat        *material.Material

	box      Box
	centroid linear.V3
}

// NewTriangle builds a Triangle from its three vertex positions
// and attributes, computing and caching its AABB and centroid.
func NewTriangle(verts [3]linear.V3, uvs [3][2]float32, normals, tangents, bitangents [3]linear.V3) Triangle {
	tr := Triangle{
		Verts:      verts,
		UVs:        uvs,
		Normals:    normals,
		Tangents:   tangents,
		Bitangents: bitangents,
	}
	tr.box = EmptyBox()
	for i := range tr.Verts {
		tr.box.AddPoint(&tr.Verts[i])
	}
	tr.centroid = tr.box.Centroid()
	return tr
}

// Box returns the cached AABB of t.
func (t *Triangle) Box() Box { return t.box }

// Centroid returns the cached centroid of t's AABB.
func (t *Triangle) Centroid() linear.V3 { return t.centroid }

// Emissive reports whether t belongs to a light-emitting group,
// per spec.md §4.4 step 4: emittance · (1,1,1) > 0.
func (t *Triangle) Emissive() bool {
	if t.Mat == nil {
		return false
	}
	e := t.Mat.Emittance
	return e[0]+e[1]+e[2] > 0
}

// Transform applies m (and its upper 3x3 n for normals/tangents/
// bitangents) to every vertex and vertex attribute of t in place,
// then recomputes the cached box/centroid. Used once, at scene
// compile time, to bake worldTransforms into triangle data.
func (t *Triangle) Transform(m *linear.M4, n *linear.M3) {
	for i := range t.Verts {
		var v4, r4 linear.V4
		copy(v4[:3], t.Verts[i][:])
		v4[3] = 1
		r4.Mul(m, &v4)
		t.Verts[i] = linear.V3{r4[0], r4[1], r4[2]}

		t.Normals[i].Mul(n, &t.Normals[i])
		t.Tangents[i].Mul(n, &t.Tangents[i])
		t.Bitangents[i].Mul(n, &t.Bitangents[i])
	}
	t.box = EmptyBox()
	for i := range t.Verts {
		t.box.AddPoint(&t.Verts[i])
	}
	t.centroid = t.box.Centroid()
}
