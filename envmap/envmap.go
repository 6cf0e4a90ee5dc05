// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package envmap implements the opaque environment-map
// radiance-distribution preprocessor of spec.md §1: given either a
// decoded image or a list of color stops, it produces the
// fixed-width texture and the uint4 radiance-bin array the tracer
// shader's environment lookup consumes (spec.md §6).
package envmap

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

const prefix = "envmap: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// GradientWidth is the fixed width of the 1D-like gradient texture
// built from color stops (spec.md §6: "a 1x2048 1D-like texture").
const GradientWidth = 2048

// Preprocessed is the preprocessor's output: the environment
// texture ready for GPU upload, plus its radiance bins.
type Preprocessed struct {
	Texture *image.RGBA
	Bins    []RadianceBin
}

// RadianceBin is one 4-component bin of the external radiance
// distribution the tracer shader samples for importance sampling.
type RadianceBin struct {
	R, G, B, A uint32
}

// FromStops builds a GradientWidth x 1 texture by linearly
// interpolating through stops, partitioning its GradientWidth
// columns evenly across stop intervals (spec.md §6).
func FromStops(stops [][3]float32) (*Preprocessed, error) {
	if len(stops) < 2 {
		return nil, newErr("at least two color stops are required")
	}
	img := image.NewRGBA(image.Rect(0, 0, GradientWidth, 1))
	segments := len(stops) - 1
	for x := 0; x < GradientWidth; x++ {
		pos := float64(x) / float64(GradientWidth-1) * float64(segments)
		seg := int(pos)
		if seg >= segments {
			seg = segments - 1
		}
		t := pos - float64(seg)
		a, b := stops[seg], stops[seg+1]
		c := color.RGBA{
			R: lerpByte(a[0], b[0], t),
			G: lerpByte(a[1], b[1], t),
			B: lerpByte(a[2], b[2], t),
			A: 255,
		}
		img.SetRGBA(x, 0, c)
	}
	return &Preprocessed{Texture: img, Bins: binsFromImage(img)}, nil
}

// FromImage resamples src (of any size/format) down to a usable
// environment texture via golang.org/x/image/draw's high-quality
// scaler, and derives its radiance bins.
func FromImage(src image.Image, width, height int) (*Preprocessed, error) {
	if src == nil {
		return nil, newErr("nil source image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return &Preprocessed{Texture: dst, Bins: binsFromImage(dst)}, nil
}

func lerpByte(a, b float32, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v * 255)
}

// binsFromImage reduces an environment texture into one radiance
// bin per row, averaging each row's pixels — a stand-in for the
// real importance-sampling distribution the opaque preprocessor is
// expected to supply (spec.md marks this entire computation opaque;
// this is a concrete, swappable default so the pipeline is runnable).
func binsFromImage(img *image.RGBA) []RadianceBin {
	b := img.Bounds()
	bins := make([]RadianceBin, 0, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		var r, g, bl, a uint64
		n := uint64(b.Dx())
		if n == 0 {
			bins = append(bins, RadianceBin{})
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			r += uint64(c.R)
			g += uint64(c.G)
			bl += uint64(c.B)
			a += uint64(c.A)
		}
		bins = append(bins, RadianceBin{
			R: uint32(r / n), G: uint32(g / n), B: uint32(bl / n), A: uint32(a / n),
		})
	}
	return bins
}
