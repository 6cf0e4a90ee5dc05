// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package material

import "testing"

func TestNew(t *testing.T) {
	m, err := New([nIndex]int{0, 1, 2, 3}, [3]float32{0, 0, 0})
	if err != nil {
		t.Fatalf("New failed:\n%v", err)
	}
	if m.IOR != dflIOR {
		t.Fatalf("New.IOR\nhave %v\nwant %v", m.IOR, dflIOR)
	}
	if m.Dielectric != dflDielectric {
		t.Fatalf("New.Dielectric\nhave %v\nwant %v", m.Dielectric, dflDielectric)
	}
}

func TestNewNegativeIndex(t *testing.T) {
	if _, err := New([nIndex]int{-1, 0, 0, 0}, [3]float32{}); err == nil {
		t.Fatal("New should reject a negative atlas index")
	}
}

func fakeAtlas() (func([3]float32) int, *[][3]float32) {
	var atlas [][3]float32
	return func(c [3]float32) int {
		atlas = append(atlas, c)
		return len(atlas) - 1
	}, &atlas
}

func TestResolveMapPrecedence(t *testing.T) {
	colorToIndex, _ := fakeAtlas()
	g := &Group{MapKd: 7, MapPMR: -1, MapKem: -1, MapBump: -1}
	m, err := Resolve(g, colorToIndex)
	if err != nil {
		t.Fatalf("Resolve failed:\n%v", err)
	}
	if m.Atlas[Diffuse] != 7 {
		t.Fatalf("Resolve diffuse precedence\nhave %d\nwant 7 (map_kd must win)", m.Atlas[Diffuse])
	}
}

func TestResolveColorPrecedence(t *testing.T) {
	colorToIndex, atlas := fakeAtlas()
	kd := [3]float32{1, 0, 0}
	g := &Group{MapKd: -1, Kd: &kd, MapPMR: -1, MapKem: -1, MapBump: -1}
	m, err := Resolve(g, colorToIndex)
	if err != nil {
		t.Fatalf("Resolve failed:\n%v", err)
	}
	if (*atlas)[m.Atlas[Diffuse]] != kd {
		t.Fatalf("Resolve diffuse color\nhave %v\nwant %v", (*atlas)[m.Atlas[Diffuse]], kd)
	}
}

func TestResolveOverridePrecedence(t *testing.T) {
	colorToIndex, _ := fakeAtlas()
	g := &Group{
		MapKd: -1, MapPMR: -1, MapKem: -1, MapBump: -1,
		Overrides: Overrides{
			Diffuse: &OverrideValue{Tex: 3},
		},
	}
	m, err := Resolve(g, colorToIndex)
	if err != nil {
		t.Fatalf("Resolve failed:\n%v", err)
	}
	if m.Atlas[Diffuse] != 3 {
		t.Fatalf("Resolve diffuse override\nhave %d\nwant 3", m.Atlas[Diffuse])
	}
}

func TestResolveFallback(t *testing.T) {
	colorToIndex, atlas := fakeAtlas()
	g := &Group{MapKd: -1, MapPMR: -1, MapKem: -1, MapBump: -1}
	m, err := Resolve(g, colorToIndex)
	if err != nil {
		t.Fatalf("Resolve failed:\n%v", err)
	}
	if (*atlas)[m.Atlas[Diffuse]] != fallbackDiffuse {
		t.Fatalf("Resolve diffuse fallback\nhave %v\nwant %v", (*atlas)[m.Atlas[Diffuse]], fallbackDiffuse)
	}
	if (*atlas)[m.Atlas[Roughness]] != fallbackRoughness {
		t.Fatalf("Resolve roughness fallback\nhave %v\nwant %v", (*atlas)[m.Atlas[Roughness]], fallbackRoughness)
	}
}

func TestResolveIORDielectricDefaults(t *testing.T) {
	colorToIndex, _ := fakeAtlas()
	g := &Group{MapKd: -1, MapPMR: -1, MapKem: -1, MapBump: -1}
	m, err := Resolve(g, colorToIndex)
	if err != nil {
		t.Fatalf("Resolve failed:\n%v", err)
	}
	if m.IOR != dflIOR || m.Dielectric != dflDielectric {
		t.Fatalf("Resolve IOR/Dielectric defaults\nhave %v, %v\nwant %v, %v", m.IOR, m.Dielectric, dflIOR, dflDielectric)
	}
}
