// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package material implements the material model consumed by
// the GPU path tracer: four atlas indices, an emittance color,
// an index of refraction and a dielectric sentinel (spec.md §3),
// plus the resolution precedence rules of spec.md §4.5.
package material

import "errors"

const prefix = "material: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// Atlas index slots. Each names a slice of the texture array
// component produced by the external atlas packer.
const (
	Diffuse = iota
	Roughness
	Normal
	Specular // also doubles as the emission slot (map_kem).
	nIndex
)

const (
	dflIOR        = 1.4
	dflDielectric = -1
)

// Material is the resolved, GPU-ready material record.
type Material struct {
	Atlas      [nIndex]int
	Emittance  [3]float32
	IOR        float32
	Dielectric float32
}

// New creates a Material with the given atlas indices and
// emittance, applying the default IOR/dielectric sentinel.
// Atlas indices must be non-negative.
func New(atlas [nIndex]int, emittance [3]float32) (m *Material, err error) {
	for _, i := range atlas {
		if i < 0 {
			return nil, newErr("negative atlas index")
		}
	}
	return &Material{
		Atlas:      atlas,
		Emittance:  emittance,
		IOR:        dflIOR,
		Dielectric: dflDielectric,
	}, nil
}

// Group is the source data a prop contributes for one material
// group: the raw fields a loaded mesh format can supply (map_kd,
// kd, ...) plus the prop-level Overrides that Resolve falls back
// to when the group's own fields are absent (spec.md §4.5).
type Group struct {
	MapKd      int // -1 if absent
	Kd         *[3]float32
	MapPMR     int // -1 if absent; channels already swizzled by the caller
	PMR        *[3]float32
	MapKem     int // -1 if absent
	Kem        *[3]float32
	MapBump    int // -1 if absent
	IOR        *float32
	Dielectric *float32

	Overrides Overrides
}

// Overrides carries the per-prop transforms record of spec.md
// §4.5: diffuse/metallicRoughness/emission/normal entries are
// either a texture-path string (resolved to an atlas index by
// the caller before constructing Overrides) or a plain color.
type Overrides struct {
	Diffuse           *OverrideValue
	MetallicRoughness *OverrideValue
	Emission          *OverrideValue
	Normal            *OverrideValue
	IOR               *float32
	Dielectric        *float32
}

// OverrideValue is either a resolved atlas index (Tex >= 0) or a
// literal color (Tex < 0, Color holds the value).
type OverrideValue struct {
	Tex   int
	Color [3]float32
}

var (
	fallbackDiffuse   = [3]float32{0.5, 0.5, 0.5}
	fallbackRoughness = [3]float32{0.0, 0.3, 0}
	fallbackEmission  = [3]float32{0, 0, 0}
)

// Resolve implements spec.md §4.5's four-index precedence chain.
// Color sources (including the fallbacks) are not atlas indices;
// Resolve converts each one it selects through colorToIndex, so
// every slot ends up holding a valid atlas index.
func Resolve(g *Group, colorToIndex func(color [3]float32) int) (*Material, error) {
	var atlas [nIndex]int

	atlas[Diffuse] = firstIndex(colorToIndex,
		indexOrNil(g.MapKd), colorOrNil(g.Kd),
		overrideIndex(g.Overrides.Diffuse), fallbackDiffuse)

	atlas[Roughness] = firstIndex(colorToIndex,
		indexOrNil(g.MapPMR), colorOrNil(g.PMR),
		overrideIndex(g.Overrides.MetallicRoughness), fallbackRoughness)

	atlas[Specular] = firstIndex(colorToIndex,
		indexOrNil(g.MapKem), colorOrNil(g.Kem),
		overrideIndex(g.Overrides.Emission), fallbackEmission)

	atlas[Normal] = firstIndex(colorToIndex,
		indexOrNil(g.MapBump), nil,
		overrideIndex(g.Overrides.Normal), [3]float32{0.5, 0.5, 1})

	ior := float32(dflIOR)
	switch {
	case g.IOR != nil:
		ior = *g.IOR
	case g.Overrides.IOR != nil:
		ior = *g.Overrides.IOR
	}

	dielectric := float32(dflDielectric)
	switch {
	case g.Dielectric != nil:
		dielectric = *g.Dielectric
	case g.Overrides.Dielectric != nil:
		dielectric = *g.Overrides.Dielectric
	}

	m, err := New(atlas, fallbackEmission)
	if err != nil {
		return nil, err
	}
	m.Emittance = emittanceFromEmission(g)
	m.IOR = ior
	m.Dielectric = dielectric
	return m, nil
}

// emittanceFromEmission extracts the emittance color feeding
// bvh.Triangle.Emissive, independent of which atlas slot the
// emission map/color ended up in. A texture-backed emission map
// or override carries no resolvable color here; the atlas slot
// itself (Specular) still reaches the GPU via Material.Atlas.
func emittanceFromEmission(g *Group) [3]float32 {
	switch {
	case g.Kem != nil:
		return *g.Kem
	case g.Overrides.Emission != nil && g.Overrides.Emission.Tex < 0:
		return g.Overrides.Emission.Color
	default:
		return fallbackEmission
	}
}

type indexSource struct {
	has bool
	idx int
}

func indexOrNil(idx int) *indexSource {
	if idx < 0 {
		return nil
	}
	return &indexSource{has: true, idx: idx}
}

type colorSource struct {
	c [3]float32
}

func colorOrNil(c *[3]float32) *colorSource {
	if c == nil {
		return nil
	}
	return &colorSource{*c}
}

func overrideIndex(o *OverrideValue) *OverrideValue { return o }

// firstIndex walks the precedence chain left to right, returning
// the first populated source converted to an atlas index.
func firstIndex(colorToIndex func([3]float32) int, mapIdx *indexSource, color *colorSource, override *OverrideValue, fallback [3]float32) int {
	switch {
	case mapIdx != nil:
		return mapIdx.idx
	case color != nil:
		return colorToIndex(color.c)
	case override != nil:
		if override.Tex >= 0 {
			return override.Tex
		}
		return colorToIndex(override.Color)
	default:
		return colorToIndex(fallback)
	}
}
