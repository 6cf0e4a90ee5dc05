// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"errors"
	"path"

	"gviegas/tracer/bvh"
	"gviegas/tracer/envmap"
	"gviegas/tracer/linear"
	"gviegas/tracer/material"
	"gviegas/tracer/meshload"
)

const prefix = "scene: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// RunMode carries the CLI's underscore-joined mode tags (spec.md
// §6), each of which toggles a shader #define.
type RunMode struct {
	Test  bool
	NEE   bool
	Alpha bool
}

// LightGroup is one contiguous run of emissive triangles, in the
// order its owning prop/material group was encountered.
type LightGroup struct {
	First, Last int // inclusive ordinals into Compiled.LightBuffer's triangle sequence
}

// Compiled is the scene compiler's output: every packed buffer of
// spec.md §3, the shader #define set, and the initial camera state
// a render.Loop is constructed from.
type Compiled struct {
	BVHBuffer       []float32
	TrianglesBuffer []float32
	NormalBuffer    []float32
	UVBuffer        []float32
	MaterialBuffer  []float32
	LightBuffer     []float32
	LightRanges     []LightGroup

	// Layout gives each packed buffer's 2D-texture shape (spec.md
	// §6): the buffer's float count is always Width·Height·Channels,
	// with unused tail cells set to −1.
	BVHLayout       BufferLayout
	TrianglesLayout BufferLayout
	NormalLayout    BufferLayout
	UVLayout        BufferLayout
	MaterialLayout  BufferLayout
	LightLayout     BufferLayout

	Bounds bvh.Box
	Depth  int
	Tree   *bvh.Tree // kept for autofocus.Cast; not part of the GPU-facing buffer contract

	Environment *envmap.Preprocessed // nil when the descriptor names none

	CameraPos, CameraDir      linear.V3
	FovScale, EnvironmentTheta float32
	Exposure                  float32
	Samples                   int

	Defines []string
}

// Compile runs the 8-step scene-compiler pipeline of spec.md §4.4.
func Compile(desc *Descriptor, assets AssetMap, loader meshload.Loader, packer AtlasPacker, mode RunMode) (*Compiled, error) {
	refs := mergeProps(desc)

	var allTris []bvh.Triangle
	var lightGroups [][]bvh.Triangle
	bounds := bvh.EmptyBox()

	for _, ref := range refs {
		data, ok := assets[ref.Path]
		if !ok {
			return nil, newErr("missing asset: " + ref.Path)
		}
		dir := path.Dir(ref.Path)
		aux := func(name string) ([]byte, bool) {
			b, ok := assets[path.Join(dir, name)]
			if !ok {
				b, ok = assets[name]
			}
			return b, ok
		}

		groups, err := loader.Load(ref.Path, data, aux)
		if err != nil {
			return nil, err
		}

		overrides, err := buildOverrides(&ref, packer)
		if err != nil {
			return nil, err
		}

		var xform *linear.M4
		var normMat *linear.M3
		if t, ok := desc.WorldTransforms[ref.Path]; ok {
			xform, normMat = bakeTransform(t)
		}

		for _, g := range groups {
			matGroup := resolveMaterialDesc(&g.Mat, overrides, packer)
			mat, err := material.Resolve(&matGroup, packer.PackColor)
			if err != nil {
				return nil, err
			}

			var groupTris []bvh.Triangle
			for i := range g.Verts {
				var verts [3]linear.V3
				for k := 0; k < 3; k++ {
					verts[k] = linear.V3(g.Verts[i][k])
				}
				var norms, tans, bitans [3]linear.V3
				for k := 0; k < 3; k++ {
					norms[k] = linear.V3(g.Normals[i][k])
					tans[k] = linear.V3(g.Tangents[i][k])
					bitans[k] = linear.V3(g.Bitangents[i][k])
				}
				tri := bvh.NewTriangle(verts, g.UVs[i], norms, tans, bitans)
				tri.Mat = mat
				if xform != nil {
					tri.Transform(xform, normMat)
				}
				groupTris = append(groupTris, tri)
			}

			for i := range groupTris {
				b := groupTris[i].Box()
				bounds.Add(&bounds, &b)
			}

			if mat.Emittance[0]+mat.Emittance[1]+mat.Emittance[2] > 0 {
				lightGroups = append(lightGroups, groupTris)
			}
			allTris = append(allTris, groupTris...)
		}
	}

	if len(allTris) == 0 {
		return nil, newErr("scene has no triangles")
	}

	if desc.Normalize > 0 {
		normalizeScene(allTris, lightGroups, &bounds, desc.Normalize)
	}

	env, err := resolveEnvironment(desc, assets)
	if err != nil {
		return nil, err
	}

	tree := bvh.Build(allTris, bvh.LeafSize)
	records, ordered := bvh.Serialize(tree)

	c := &Compiled{
		Environment:      env,
		Bounds:           bounds,
		Depth:            tree.Depth,
		Tree:             tree,
		CameraPos:        linear.V3(desc.CameraPos),
		CameraDir:        linear.V3(desc.CameraDir),
		FovScale:         desc.FovScale,
		EnvironmentTheta: desc.EnvironmentTheta,
		Exposure:         desc.Exposure,
		Samples:          desc.Samples,
	}

	packBuffers(c, records, ordered, lightGroups)
	defs := emitDefines(len(c.LightRanges), mode)
	numBins := 0
	if env != nil {
		numBins = len(env.Bins)
	}
	c.Defines = EnvDefines(defs, numBins)
	return c, nil
}

// mergeProps concatenates the three prop lists in the order
// spec.md §4.4 step 1 specifies.
func mergeProps(desc *Descriptor) []PropRef {
	out := make([]PropRef, 0, len(desc.Props)+len(desc.StaticProps)+len(desc.AnimatedProps))
	out = append(out, desc.Props...)
	out = append(out, desc.StaticProps...)
	out = append(out, desc.AnimatedProps...)
	return out
}

// bakeTransform composes one prop's world matrix (and its normal
// matrix) directly from its translate/rotate/scale fields: a scene
// descriptor's worldTransforms has no prop-to-prop parenting, so
// there is no hierarchy here for a scene graph to resolve — this is
// a single matrix product, computed once per prop before BVH build.
func bakeTransform(t Transform) (*linear.M4, *linear.M3) {
	var scale linear.M4
	scale.I()
	scale[0][0], scale[1][1], scale[2][2] = t.Scale, t.Scale, t.Scale
	if t.Scale == 0 {
		scale.I()
	}
	var rot linear.M4
	axis := linear.V3{t.Axis[0], t.Axis[1], t.Axis[2]}
	if t.Angle != 0 && axis.Len() > 1e-8 {
		axis.Norm(&axis)
		rot.RotateAxis(&axis, t.Angle)
	} else {
		rot.I()
	}
	var world linear.M4
	world.Mul(&rot, &scale)
	world[3] = linear.V4{t.Translate[0], t.Translate[1], t.Translate[2], 1}

	var normMat linear.M3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			normMat[i][j] = world[i][j]
		}
	}
	return &world, &normMat
}

func normalizeScene(tris []bvh.Triangle, lightGroups [][]bvh.Triangle, bounds *bvh.Box, normalize float32) {
	centroid := bounds.Centroid()
	ext := linear.V3{
		bounds.Max[0] - bounds.Min[0],
		bounds.Max[1] - bounds.Min[1],
		bounds.Max[2] - bounds.Min[2],
	}
	longest := ext[0]
	if ext[1] > longest {
		longest = ext[1]
	}
	if ext[2] > longest {
		longest = ext[2]
	}
	if longest <= 0 {
		return
	}
	scale := (2 * normalize) / longest

	var m linear.M4
	m.I()
	m[0][0], m[1][1], m[2][2] = scale, scale, scale
	var negCentroid linear.V3
	negCentroid.Scale(-scale, &centroid)
	m[3] = linear.V4{negCentroid[0], negCentroid[1], negCentroid[2], 1}
	var n linear.M3
	n[0][0], n[1][1], n[2][2] = 1, 1, 1

	for i := range tris {
		tris[i].Transform(&m, &n)
	}
	// lightGroups shares triangle values (not pointers) with tris,
	// appended before this call, so it must be rescaled separately.
	for i := range lightGroups {
		for j := range lightGroups[i] {
			lightGroups[i][j].Transform(&m, &n)
		}
	}

	*bounds = bvh.EmptyBox()
	for i := range tris {
		b := tris[i].Box()
		bounds.Add(bounds, &b)
	}
}
