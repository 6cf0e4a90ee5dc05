// Copyright 2023 Gustavo C. Viegas. All rights reserved.

//go:build !headless

package gpuadapter

import "testing"

func TestPackFloatsRoundTrip(t *testing.T) {
	buf := []float32{1, -1, 0, 3.5, 1e10}
	img := packFloats(buf)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w != len(buf) || h != 1 {
		t.Fatalf("packFloats size\nhave %dx%d\nwant %dx1", w, h, len(buf))
	}
}

func TestPackFloatsEmptyYieldsPlaceholder(t *testing.T) {
	img := packFloats(nil)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w != 1 || h != 1 {
		t.Fatalf("packFloats empty size\nhave %dx%d\nwant 1x1", w, h)
	}
}

func TestPackAtlasOffsets(t *testing.T) {
	bvh := floatsToBytes([]float32{1, 2})
	tris := floatsToBytes([]float32{3, 4, 5})
	normal := floatsToBytes([]float32{6})
	img, offsets := packAtlas(bvh, tris, normal)
	want := []int32{0, 2, 5}
	if len(offsets) != len(want) {
		t.Fatalf("offsets\nhave %v\nwant %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offsets[%d]\nhave %d\nwant %d", i, offsets[i], want[i])
		}
	}
	w := img.Bounds().Dx()
	if w != 6 {
		t.Fatalf("packAtlas width\nhave %d\nwant 6", w)
	}
}
