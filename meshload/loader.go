// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package meshload defines the mesh-loading interface the scene
// compiler delegates to, and a Wavefront OBJ/MTL implementation of
// it. Loader is the seam named by spec.md §1's "opaque mesh-loading
// interface": the compiler never parses a mesh format itself.
package meshload

// Loader loads a prop's mesh data from a raw asset byte slice,
// grouping its triangles by material.
type Loader interface {
	// Load parses data (the contents of the file named by path) and
	// returns one Group per material group found in it. aux is
	// consulted for any auxiliary asset the format references by
	// name (e.g. an OBJ's .mtl companion file, or a referenced
	// texture); it returns (nil, false) for an unknown name.
	Load(path string, data []byte, aux func(name string) ([]byte, bool)) ([]Group, error)
}

// MaterialDesc is the raw, unresolved material description for one
// Group: texture references are left as paths ("" when absent) for
// the scene compiler's atlas packer to resolve into the integer
// indices material.Group expects; an empty path with a non-nil
// color pointer means a flat value with no backing texture.
type MaterialDesc struct {
	DiffuseTex   string
	DiffuseColor *[3]float32

	RoughTex     string
	RoughSwizzle string
	RoughColor   *[3]float32

	EmissionTex   string
	EmissionColor *[3]float32

	BumpTex string

	IOR        *float32
	Dielectric *float32
}

// Group is one material group's worth of raw triangle data plus
// its unresolved material description. The scene compiler resolves
// Mat's texture paths through its atlas packer, builds a
// material.Group, and runs material.Resolve over it once per
// Group, attaching the result to every triangle it produced.
type Group struct {
	Verts      [][3][3]float32
	UVs        [][3][2]float32
	Normals    [][3][3]float32
	Tangents   [][3][3]float32
	Bitangents [][3][3]float32
	Mat        MaterialDesc
}
