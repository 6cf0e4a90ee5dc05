// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package gpuadapter wraps the three Kage shader programs (camera,
// tracer, present) and their uniform/image bindings, in the
// teacher's driver.GPU-style factory-interface idiom (New*
// constructors returning (T, error), a Destroyer-style Close), but
// scoped to exactly what an ebiten-hosted fragment-shader path
// tracer needs: compile the programs once at startup, bind the
// scene compiler's packed buffers, and issue the three draw passes
// a render.Loop tick calls.
package gpuadapter

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"gviegas/tracer/linear"
	"gviegas/tracer/scene"
)

// envSlot is the atlas segment index the environment texture occupies
// when compiled.Environment is non-nil; it always rides after the six
// static float buffers.
const envSlot = 6

const prefix = "gpuadapter: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// Adapter owns the compiled shader programs and the static,
// immutable scene buffers uploaded once at startup (spec.md §5:
// "all packed buffers are uploaded exactly once and treated as
// immutable thereafter").
type Adapter struct {
	camera  *ebiten.Shader
	tracer  *ebiten.Shader
	present *ebiten.Shader

	// Flat copies of compiled's packed buffers. ebiten's shader
	// images are 8-bit RGBA, so the six static buffers are
	// re-encoded byte-for-byte into the single sceneTex atlas
	// (packAtlas), one float per pixel, rather than a literal
	// RGBA32F texture ebiten cannot provide. lightRanges is kept
	// here but is not bound to any draw pass.
	bvhBuffer       []float32
	trianglesBuffer []float32
	normalBuffer    []float32
	uvBuffer        []float32
	materialBuffer  []float32
	lightBuffer     []float32
	lightRanges     []float32

	// sceneTex holds every static packed buffer (and, when present,
	// the environment texture) concatenated into a single row via
	// packAtlas; offsets gives each buffer's starting column, in
	// bvh/triangles/normal/uv/material/light order, so the tracer
	// shader can slice it back apart with a single bound image
	// instead of one per buffer — ebiten.DrawRectShaderOptions.Images
	// only has four slots, too few for six static buffers plus the
	// two dynamic camera-ray textures a tracer pass reads
	// simultaneously.
	sceneTex *ebiten.Image
	offsets  [6]int32

	// envOffset/envWidth locate the environment texture's raw RGBA
	// bytes within the same atlas, appended as a 7th segment
	// (verbatim color bytes, not bitcast floats) when the scene
	// names an environment; envWidth is 0 when there is none.
	envOffset, envWidth int32

	// layouts gives each of the six static buffers' 2D-texture shape
	// (scene.BufferLayout), in the same bvh/triangles/normal/uv/
	// material/light order as offsets, so the tracer shader can
	// convert a flat atlas offset into a (row, col) pair inside its
	// own buffer's padded rectangle.
	layouts [6]scene.BufferLayout

	defines []string
}

// NewAdapter compiles the three Kage programs and binds compiled's
// packed buffers as static textures. useTestTracer substitutes a
// debug tracer shader per the "-mode test" launch flag (spec.md §6).
func NewAdapter(compiled *scene.Compiled, useTestTracer bool) (*Adapter, error) {
	cam, err := ebiten.NewShader([]byte(cameraShaderSrc))
	if err != nil {
		return nil, newErr("camera shader: " + err.Error())
	}
	tracerSrc := tracerShaderSrc
	if useTestTracer {
		tracerSrc = presentShaderSrc // a stand-in debug program; same binding shape.
	}
	tr, err := ebiten.NewShader([]byte(tracerSrc))
	if err != nil {
		return nil, newErr("tracer shader: " + err.Error())
	}
	pr, err := ebiten.NewShader([]byte(presentShaderSrc))
	if err != nil {
		return nil, newErr("present shader: " + err.Error())
	}

	a := &Adapter{
		camera:  cam,
		tracer:  tr,
		present: pr,

		bvhBuffer:       compiled.BVHBuffer,
		trianglesBuffer: compiled.TrianglesBuffer,
		normalBuffer:    compiled.NormalBuffer,
		uvBuffer:        compiled.UVBuffer,
		materialBuffer:  compiled.MaterialBuffer,
		lightBuffer:     compiled.LightBuffer,
		layouts: [6]scene.BufferLayout{
			compiled.BVHLayout,
			compiled.TrianglesLayout,
			compiled.NormalLayout,
			compiled.UVLayout,
			compiled.MaterialLayout,
			compiled.LightLayout,
		},
		defines: compiled.Defines,
	}
	a.lightRanges = make([]float32, 0, len(compiled.LightRanges)*2)
	for _, r := range compiled.LightRanges {
		a.lightRanges = append(a.lightRanges, float32(r.First), float32(r.Last))
	}

	segments := [][]byte{
		floatsToBytes(a.bvhBuffer),
		floatsToBytes(a.trianglesBuffer),
		floatsToBytes(a.normalBuffer),
		floatsToBytes(a.uvBuffer),
		floatsToBytes(a.materialBuffer),
		floatsToBytes(a.lightBuffer),
	}
	if compiled.Environment != nil {
		segments = append(segments, compiled.Environment.Texture.Pix)
		a.envWidth = int32(compiled.Environment.Texture.Bounds().Dx())
	}

	var allOffsets []int32
	a.sceneTex, allOffsets = packAtlas(segments...)
	copy(a.offsets[:], allOffsets)
	if len(allOffsets) > envSlot {
		a.envOffset = allOffsets[envSlot]
	}

	return a, nil
}

// Defines returns the shader preprocessor directives emitted by the
// scene compiler (spec.md §4.4 step 8); a real build would splice
// these into the Kage source before compiling.
func (a *Adapter) Defines() []string { return a.defines }

// DrawCamera runs the camera pass, writing per-pixel ray origin and
// direction into origin/dir.
func (a *Adapter) DrawCamera(origin, dir *ebiten.Image, eye, eyeDir linear.V3, fovScale float32, lens [2]float32, seed uint64) {
	w, h := origin.Bounds().Dx(), origin.Bounds().Dy()
	opts := &ebiten.DrawRectShaderOptions{
		Uniforms: map[string]any{
			"Eye":         [3]float32{eye[0], eye[1], eye[2]},
			"Dir":         [3]float32{eyeDir[0], eyeDir[1], eyeDir[2]},
			"FovScale":    fovScale,
			"LensFeature": lens,
			"Seed":        float32(seed % (1 << 24)),
		},
	}
	origin.DrawRectShader(w, h, a.camera, opts)
	dir.DrawRectShader(w, h, a.camera, opts)
}

// DrawTracer runs the tracer pass: reads prev (the prior
// accumulator), the camera ray textures and every static scene
// buffer, and writes dst.
func (a *Adapter) DrawTracer(dst, prev, origin, dir *ebiten.Image, envTheta, resScale float32) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	opts := &ebiten.DrawRectShaderOptions{
		Uniforms: map[string]any{
			"EnvTheta":        envTheta,
			"ResScale":        resScale,
			"BVHOffset":       float32(a.offsets[0]),
			"TrianglesOffset": float32(a.offsets[1]),
			"NormalOffset":    float32(a.offsets[2]),
			"UVOffset":        float32(a.offsets[3]),
			"MaterialOffset":  float32(a.offsets[4]),
			"LightOffset":     float32(a.offsets[5]),
			"EnvOffset":       float32(a.envOffset),
			"EnvWidth":        float32(a.envWidth),
			"BVHStride":       float32(a.layouts[0].Width),
			"TrianglesStride": float32(a.layouts[1].Width),
			"NormalStride":    float32(a.layouts[2].Width),
			"UVStride":        float32(a.layouts[3].Width),
			"MaterialStride":  float32(a.layouts[4].Width),
			"LightStride":     float32(a.layouts[5].Width),
		},
		Images: [4]*ebiten.Image{prev, origin, dir, a.sceneTex},
	}
	dst.DrawRectShader(int(float32(w)*resScale), int(float32(h)*resScale), a.tracer, opts)
}

// DrawPresent runs the tone-mapping present pass: reads src (the
// latest accumulator) and writes dst (the screen-sized present
// target blitted to the framebuffer by render.Loop.Draw).
func (a *Adapter) DrawPresent(dst, src *ebiten.Image, exposure, saturation float32) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	opts := &ebiten.DrawRectShaderOptions{
		Uniforms: map[string]any{
			"Exposure":   exposure,
			"Saturation": saturation,
		},
		Images: [4]*ebiten.Image{src},
	}
	dst.DrawRectShader(w, h, a.present, opts)
}

// Close releases the adapter's GPU-side textures. The shaders
// themselves have no explicit release in ebiten's API.
func (a *Adapter) Close() error {
	if a.sceneTex != nil {
		a.sceneTex.Deallocate()
	}
	return nil
}

// floatsToBytes re-encodes a flat float32 buffer into its raw
// 4-byte-per-element representation — bit-exact (via byte
// re-encoding, not numeric rounding), matching spec.md §9's
// integer/float reinterpretation requirement for the BVH record's
// int cells, applied uniformly here so every packed buffer
// round-trips exactly through an 8-bit-per-channel texture.
func floatsToBytes(buf []float32) []byte {
	b := make([]byte, len(buf)*4)
	for i, f := range buf {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], math.Float32bits(f))
	}
	return b
}

// packFloats re-encodes a flat float32 buffer into an 8-bit RGBA
// ebiten.Image, one float per pixel. A nil/empty buffer yields a 1x1
// placeholder (never a zero-size image, which ebiten rejects).
func packFloats(buf []float32) *ebiten.Image {
	img, _ := packAtlas(floatsToBytes(buf))
	return img
}

// packAtlas concatenates raw 4-byte-per-texel segments into a single
// row image and returns each segment's starting column — the
// single-image workaround for ebiten.DrawRectShaderOptions.Images'
// four-slot limit (see Adapter's sceneTex doc comment). Segments need
// not hold bitcast floats: the environment texture's real RGBA bytes
// ride in the same atlas verbatim, since WritePixels only cares about
// 4-byte texels, not their interpretation.
func packAtlas(segments ...[]byte) (*ebiten.Image, []int32) {
	offsets := make([]int32, len(segments))
	var flat []byte
	for i, s := range segments {
		offsets[i] = int32(len(flat) / 4)
		flat = append(flat, s...)
	}
	n := len(flat) / 4
	if n == 0 {
		n = 1
		flat = make([]byte, 4)
	}
	img := ebiten.NewImage(n, 1)
	img.WritePixels(flat)
	return img, offsets
}
