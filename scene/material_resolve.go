// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"encoding/json"

	"gviegas/tracer/material"
	"gviegas/tracer/meshload"
)

// buildOverrides parses a PropRef's raw transforms fields (each
// either a JSON string naming a texture path, or a JSON object
// {"r":.., "g":.., "b":..} naming a flat color) into the
// material.Overrides record that material.Resolve falls back to
// when a group's own material fields are absent (spec.md §4.5).
func buildOverrides(ref *PropRef, packer AtlasPacker) (material.Overrides, error) {
	var o material.Overrides
	var err error

	if o.Diffuse, err = parseOverride(ref.Diffuse, "", packer); err != nil {
		return o, err
	}
	if o.MetallicRoughness, err = parseOverride(ref.MetallicRoughness, ref.MRSwizzle, packer); err != nil {
		return o, err
	}
	if o.Emission, err = parseOverride(ref.Emission, "", packer); err != nil {
		return o, err
	}
	if o.Normal, err = parseOverride(ref.Normal, "", packer); err != nil {
		return o, err
	}
	o.IOR = ref.IOR
	o.Dielectric = ref.Dielectric
	return o, nil
}

// parseOverride decodes one raw transforms field. A nil/empty raw
// message yields a nil OverrideValue (no override present).
func parseOverride(raw json.RawMessage, swizzle string, packer AtlasPacker) (*material.OverrideValue, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		idx, err := packer.PackTexture(path, swizzle)
		if err != nil {
			return nil, err
		}
		return &material.OverrideValue{Tex: idx}, nil
	}

	var rgb struct{ R, G, B float32 }
	if err := json.Unmarshal(raw, &rgb); err != nil {
		return nil, newErr("malformed transforms override")
	}
	return &material.OverrideValue{Tex: -1, Color: [3]float32{rgb.R, rgb.G, rgb.B}}, nil
}

// resolveMaterialDesc converts a loader's raw MaterialDesc into a
// material.Group, resolving any texture paths through packer and
// attaching the prop-level overrides.
func resolveMaterialDesc(d *meshload.MaterialDesc, overrides material.Overrides, packer AtlasPacker) material.Group {
	g := material.Group{
		MapKd: -1, MapPMR: -1, MapKem: -1, MapBump: -1,
		Kd: d.DiffuseColor, PMR: d.RoughColor, Kem: d.EmissionColor,
		IOR: d.IOR, Dielectric: d.Dielectric,
		Overrides: overrides,
	}
	if d.DiffuseTex != "" {
		if idx, err := packer.PackTexture(d.DiffuseTex, ""); err == nil {
			g.MapKd = idx
		}
	}
	if d.RoughTex != "" {
		if idx, err := packer.PackTexture(d.RoughTex, d.RoughSwizzle); err == nil {
			g.MapPMR = idx
		}
	}
	if d.EmissionTex != "" {
		if idx, err := packer.PackTexture(d.EmissionTex, ""); err == nil {
			g.MapKem = idx
		}
	}
	if d.BumpTex != "" {
		if idx, err := packer.PackTexture(d.BumpTex, ""); err == nil {
			g.MapBump = idx
		}
	}
	return g
}
