// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package meshload

import "testing"

const triObj = `
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
mtllib tri.mtl
usemtl red
f 1/1/1 2/2/1 3/3/1
`

const triMtl = `
newmtl red
Kd 1 0 0
Ni 1.5
`

func aux(files map[string][]byte) func(string) ([]byte, bool) {
	return func(name string) ([]byte, bool) {
		b, ok := files[name]
		return b, ok
	}
}

func TestObjLoad(t *testing.T) {
	files := map[string][]byte{"tri.mtl": []byte(triMtl)}
	groups, err := Obj{}.Load("tri.obj", []byte(triObj), aux(files))
	if err != nil {
		t.Fatalf("Load failed:\n%v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("group count\nhave %d\nwant 1", len(groups))
	}
	g := groups[0]
	if len(g.Verts) != 1 {
		t.Fatalf("triangle count\nhave %d\nwant 1", len(g.Verts))
	}
	if g.Verts[0][1] != [3]float32{1, 0, 0} {
		t.Fatalf("vertex 1\nhave %v\nwant [1 0 0]", g.Verts[0][1])
	}
	if g.Mat.DiffuseColor == nil || *g.Mat.DiffuseColor != [3]float32{1, 0, 0} {
		t.Fatalf("diffuse color\nhave %v\nwant [1 0 0]", g.Mat.DiffuseColor)
	}
	if g.Mat.IOR == nil || *g.Mat.IOR != 1.5 {
		t.Fatalf("IOR\nhave %v\nwant 1.5", g.Mat.IOR)
	}
}

func TestObjLoadMissingMtl(t *testing.T) {
	files := map[string][]byte{}
	_, err := Obj{}.Load("tri.obj", []byte(triObj), aux(files))
	if err == nil {
		t.Fatal("Load should fail when the mtllib companion is missing")
	}
}

const quadObj = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl default
f 1/1 2/2 3/3 4/4
`

func TestObjLoadTriangulatesQuad(t *testing.T) {
	groups, err := Obj{}.Load("quad.obj", []byte(quadObj), aux(nil))
	if err != nil {
		t.Fatalf("Load failed:\n%v", err)
	}
	total := 0
	for _, g := range groups {
		total += len(g.Verts)
	}
	if total != 2 {
		t.Fatalf("triangle count after fan triangulation\nhave %d\nwant 2", total)
	}
}

func TestObjLoadDerivesFaceNormalWhenAbsent(t *testing.T) {
	groups, err := Obj{}.Load("tri2.obj", []byte(`
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`), aux(nil))
	if err != nil {
		t.Fatalf("Load failed:\n%v", err)
	}
	n := groups[0].Normals[0][0]
	if n != [3]float32{0, 0, 1} {
		t.Fatalf("derived face normal\nhave %v\nwant [0 0 1]", n)
	}
}
