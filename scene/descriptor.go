// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package scene implements the scene compiler: it parses a scene
// descriptor, delegates mesh loading per prop, merges material
// groups, builds the BVH, and emits every packed buffer the GPU
// path tracer consumes, per the pipeline of §4.4 of the design
// this package's tests are written against.
package scene

import "encoding/json"

// Descriptor is the JSON scene descriptor of the external
// interface: the three prop lists, optional environment, initial
// camera state and render parameters.
type Descriptor struct {
	Props          []PropRef `json:"props,omitempty"`
	StaticProps    []PropRef `json:"static_props,omitempty"`
	AnimatedProps  []PropRef `json:"animated_props,omitempty"`
	Environment    json.RawMessage `json:"environment,omitempty"`
	CameraPos      [3]float32      `json:"cameraPos"`
	CameraDir      [3]float32      `json:"cameraDir"`
	FovScale       float32         `json:"fovScale"`
	EnvironmentTheta float32       `json:"environmentTheta"`
	Exposure       float32         `json:"exposure"`
	Samples        int             `json:"samples"`
	Normalize      float32         `json:"normalize,omitempty"`
	WorldTransforms map[string]Transform `json:"worldTransforms,omitempty"`
	AtlasRes       int             `json:"atlasRes,omitempty"`
}

// PropRef names one mesh asset and its per-prop material overrides.
type PropRef struct {
	Path       string      `json:"path"`
	Emittance  [3]float32  `json:"emittance,omitempty"`
	Reflectance *[3]float32 `json:"reflectance,omitempty"`
	Diffuse    json.RawMessage `json:"diffuse,omitempty"`
	MetallicRoughness json.RawMessage `json:"metallicRoughness,omitempty"`
	MRSwizzle  string      `json:"mrSwizzle,omitempty"`
	Normal     json.RawMessage `json:"normal,omitempty"`
	Emission   json.RawMessage `json:"emission,omitempty"`
	IOR        *float32    `json:"ior,omitempty"`
	Dielectric *float32    `json:"dielectric,omitempty"`
}

// Transform is a prop's world transform: translation, a
// unit rotation axis + angle (radians), and a uniform scale.
type Transform struct {
	Translate [3]float32 `json:"translate,omitempty"`
	Axis      [3]float32 `json:"axis,omitempty"`
	Angle     float32    `json:"angle,omitempty"`
	Scale     float32    `json:"scale,omitempty"`
}

// AssetMap supplies the raw bytes of every path a Descriptor or its
// mesh loader references, keyed by path.
type AssetMap map[string][]byte
