// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"math"
	"sync"

	"gviegas/tracer/bvh"
)

// BufferLayout describes the 2D-texture shape a packed buffer was
// padded to (spec.md §6): Width·Height·Channels floats, row-major,
// with every cell past the buffer's live data set to −1.
type BufferLayout struct {
	Width, Height, Channels int
}

// packBuffers fills in every packed float buffer of Compiled from
// the BVH's serialized records/ordered-triangle list and the raw
// light-triangle groups, per spec.md §3. The five per-triangle
// buffers (triangles/normal/uv/material and the bvh buffer itself)
// are independent of one another once the inputs are fixed, so
// they are packed concurrently; lightBuffer depends only on
// lightGroups and is packed after them, on the calling goroutine.
func packBuffers(c *Compiled, records []bvh.Record, tris []bvh.Triangle, lightGroups [][]bvh.Triangle) {
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		c.BVHBuffer, c.BVHLayout = packBVH(records)
	}()
	go func() {
		defer wg.Done()
		c.TrianglesBuffer, c.TrianglesLayout = packTriangles(tris)
	}()
	go func() {
		defer wg.Done()
		c.NormalBuffer, c.NormalLayout = packNormals(tris)
	}()
	go func() {
		defer wg.Done()
		c.UVBuffer, c.UVLayout = packUVs(tris)
	}()
	go func() {
		defer wg.Done()
		c.MaterialBuffer, c.MaterialLayout = packMaterials(tris)
	}()
	wg.Wait()

	var lightRaw []float32
	lightRaw, c.LightRanges = packLightsRaw(lightGroups)
	c.LightBuffer, c.LightLayout = pad2D(lightRaw, 3, 3)
}

// pad2D pads flat (a tightly-packed run of channels-per-pixel float
// records) out to the 2D layout of spec.md §6: width =
// ceil(sqrt(numPixels)/perElement)·perElement, height =
// ceil(numPixels/width), tail cells set to −1. perElement is the
// number of pixels one logical record occupies (so a record is never
// split across a row boundary).
func pad2D(flat []float32, channels, perElement int) ([]float32, BufferLayout) {
	numPixels := len(flat) / channels

	width := int(math.Ceil(math.Sqrt(float64(numPixels))/float64(perElement))) * perElement
	if width < perElement {
		width = perElement
	}
	height := int(math.Ceil(float64(numPixels) / float64(width)))
	if height < 1 {
		height = 1
	}

	out := make([]float32, width*height*channels)
	copy(out, flat)
	for i := len(flat); i < len(out); i++ {
		out[i] = -1
	}
	return out, BufferLayout{Width: width, Height: height, Channels: channels}
}

func packBVH(records []bvh.Record) ([]float32, BufferLayout) {
	out := make([]float32, 0, len(records)*9)
	for _, r := range records {
		f := r.Floats()
		out = append(out, f[:]...)
	}
	return pad2D(out, 3, 3)
}

func packTriangles(tris []bvh.Triangle) ([]float32, BufferLayout) {
	out := make([]float32, 0, len(tris)*9)
	for _, t := range tris {
		for _, v := range t.Verts {
			out = append(out, v[0], v[1], v[2])
		}
	}
	return pad2D(out, 3, 3)
}

func packNormals(tris []bvh.Triangle) ([]float32, BufferLayout) {
	out := make([]float32, 0, len(tris)*27)
	for _, t := range tris {
		for i := 0; i < 3; i++ {
			out = append(out, t.Normals[i][0], t.Normals[i][1], t.Normals[i][2])
			out = append(out, t.Tangents[i][0], t.Tangents[i][1], t.Tangents[i][2])
			out = append(out, t.Bitangents[i][0], t.Bitangents[i][1], t.Bitangents[i][2])
		}
	}
	return pad2D(out, 3, 9)
}

func packUVs(tris []bvh.Triangle) ([]float32, BufferLayout) {
	out := make([]float32, 0, len(tris)*6)
	for _, t := range tris {
		for _, uv := range t.UVs {
			out = append(out, uv[0], uv[1])
		}
	}
	return pad2D(out, 2, 3)
}

func packMaterials(tris []bvh.Triangle) ([]float32, BufferLayout) {
	out := make([]float32, 0, len(tris)*12)
	for _, t := range tris {
		m := t.Mat
		out = append(out,
			float32(m.Atlas[0]), float32(m.Atlas[1]), float32(m.Atlas[2]), float32(m.Atlas[3]),
			-1, -1, // pad
			m.Emittance[0], m.Emittance[1], m.Emittance[2],
			m.IOR, m.Dielectric,
			-1, // pad
		)
	}
	return pad2D(out, 3, 4)
}

// packLightsRaw concatenates every light group's triangle vertices in
// group order, tightly (no 2D padding — that is pad2D's job once the
// caller has the full run and the ranges it denotes).
func packLightsRaw(groups [][]bvh.Triangle) ([]float32, []LightGroup) {
	var buf []float32
	var ranges []LightGroup
	base := 0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		for _, t := range g {
			for _, v := range t.Verts {
				buf = append(buf, v[0], v[1], v[2])
			}
		}
		ranges = append(ranges, LightGroup{First: base, Last: base + len(g) - 1})
		base += len(g)
	}
	return buf, ranges
}
