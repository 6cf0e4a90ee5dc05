// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package render

import (
	"testing"

	"gviegas/tracer/linear"
)

func TestCameraZoom(t *testing.T) {
	c := Camera{FovScale: 1}
	c.Zoom(2)
	if c.FovScale != 2 {
		t.Fatalf("FovScale\nhave %v\nwant 2", c.FovScale)
	}
	c.Zoom(-1) // non-positive factors are ignored
	if c.FovScale != 2 {
		t.Fatalf("FovScale after invalid zoom\nhave %v\nwant 2", c.FovScale)
	}
}

func TestCameraRotatePreservesUnitLength(t *testing.T) {
	c := Camera{Dir: linear.V3{0, 0, -1}}
	c.Rotate(0.3, 0.2)
	l := c.Dir.Len()
	if l < 0.999 || l > 1.001 {
		t.Fatalf("Dir length after rotate\nhave %v\nwant ~1", l)
	}
}

func TestCameraTranslateForward(t *testing.T) {
	c := Camera{Pos: linear.V3{0, 0, 0}, Dir: linear.V3{0, 0, -1}}
	c.Translate(linear.V3{0, 0, 1})
	if diff := c.Pos[2] - (-1); diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("Pos.z after forward translate\nhave %v\nwant -1", c.Pos[2])
	}
}

func TestCameraSetLensAndEnvTheta(t *testing.T) {
	c := Camera{}
	c.SetLens([2]float32{0.5, 0.1})
	if c.LensFeature != [2]float32{0.5, 0.1} {
		t.Fatalf("LensFeature\nhave %v\nwant {0.5 0.1}", c.LensFeature)
	}
	c.SetEnvTheta(1.2)
	if c.EnvTheta != 1.2 {
		t.Fatalf("EnvTheta\nhave %v\nwant 1.2", c.EnvTheta)
	}
}
