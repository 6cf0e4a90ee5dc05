// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"testing"

	"gviegas/tracer/meshload"
)

const cubeMtl = `
newmtl default
Kd 0.8 0.8 0.8
`

const cubeObj = `
v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
mtllib cube.mtl
usemtl default
f 1/1 2/2 3/3 4/4
f 5/1 6/2 7/3 8/4
`

const lightObj = `
v -1 -1 0
v 1 -1 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
mtllib light.mtl
usemtl emit
f 1/1 2/2 3/3
`

const lightMtl = `
newmtl emit
Ke 5 5 5
`

func TestCompileBasic(t *testing.T) {
	desc := &Descriptor{
		Props: []PropRef{{Path: "cube.obj"}},
		Samples: 10,
	}
	assets := AssetMap{
		"cube.obj": []byte(cubeObj),
		"cube.mtl": []byte(cubeMtl),
	}
	c, err := Compile(desc, assets, meshload.Obj{}, NewMemPacker(), RunMode{})
	if err != nil {
		t.Fatalf("Compile failed:\n%v", err)
	}
	if len(c.TrianglesBuffer) == 0 {
		t.Fatal("expected a non-empty TrianglesBuffer")
	}
	if len(c.TrianglesBuffer)%9 != 0 {
		t.Fatalf("TrianglesBuffer length %d not a multiple of 9", len(c.TrianglesBuffer))
	}
	if len(c.MaterialBuffer)%12 != 0 {
		t.Fatalf("MaterialBuffer length %d not a multiple of 12", len(c.MaterialBuffer))
	}
	if len(c.LightRanges) != 0 {
		t.Fatalf("LightRanges\nhave %d\nwant 0 (no emissive groups)", len(c.LightRanges))
	}
}

func TestCompileLights(t *testing.T) {
	desc := &Descriptor{
		Props: []PropRef{
			{Path: "cube.obj"},
			{Path: "light.obj"},
		},
	}
	assets := AssetMap{
		"cube.obj":  []byte(cubeObj),
		"cube.mtl":  []byte(cubeMtl),
		"light.obj": []byte(lightObj),
		"light.mtl": []byte(lightMtl),
	}
	c, err := Compile(desc, assets, meshload.Obj{}, NewMemPacker(), RunMode{})
	if err != nil {
		t.Fatalf("Compile failed:\n%v", err)
	}
	if len(c.LightRanges) != 1 {
		t.Fatalf("LightRanges\nhave %d\nwant 1", len(c.LightRanges))
	}
	if c.LightRanges[0].First != 0 || c.LightRanges[0].Last != 0 {
		t.Fatalf("LightRanges[0]\nhave %+v\nwant {0 0}", c.LightRanges[0])
	}
}

func TestCompileMissingAsset(t *testing.T) {
	desc := &Descriptor{Props: []PropRef{{Path: "missing.obj"}}}
	_, err := Compile(desc, AssetMap{}, meshload.Obj{}, NewMemPacker(), RunMode{})
	if err == nil {
		t.Fatal("Compile should fail when a prop's asset is missing")
	}
}

func TestCompileNormalize(t *testing.T) {
	desc := &Descriptor{
		Props:     []PropRef{{Path: "cube.obj"}},
		Normalize: 1,
	}
	assets := AssetMap{
		"cube.obj": []byte(cubeObj),
		"cube.mtl": []byte(cubeMtl),
	}
	c, err := Compile(desc, assets, meshload.Obj{}, NewMemPacker(), RunMode{})
	if err != nil {
		t.Fatalf("Compile failed:\n%v", err)
	}
	for _, v := range [2][3]float32{c.Bounds.Min, c.Bounds.Max} {
		for _, x := range v {
			if x < -1.0001 || x > 1.0001 {
				t.Fatalf("normalized bounds exceed [-1,1]: %v", v)
			}
		}
	}
}

func TestEmitDefines(t *testing.T) {
	defs := emitDefines(0, RunMode{NEE: true})
	found := map[string]bool{}
	for _, d := range defs {
		found[d] = true
	}
	if !found["#define NUM_LIGHT_RANGES 1"] {
		t.Fatalf("expected NUM_LIGHT_RANGES clamped to 1, got %v", defs)
	}
	if !found["#define USE_EXPLICIT"] {
		t.Fatalf("expected USE_EXPLICIT when mode.NEE is set, got %v", defs)
	}
}
