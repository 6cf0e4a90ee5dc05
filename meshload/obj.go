// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package meshload

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const prefix = "meshload: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// Obj is a Loader for Wavefront OBJ meshes with an MTL companion
// file. Faces with more than three vertices are triangulated as a
// fan around the first vertex; missing normals are derived from
// face winding; missing tangents/bitangents are derived from the
// per-triangle UV gradient.
type Obj struct{}

// groupState accumulates one in-progress material group while
// scanning the OBJ text.
type groupState struct {
	matName string
	verts   [][3][3]float32
	uvs     [][3][2]float32
	norms   [][3][3]float32
}

func (Obj) Load(path string, data []byte, aux func(name string) ([]byte, bool)) ([]Group, error) {
	var positions [][3]float32
	var texcoords [][2]float32
	var normals [][3]float32

	mtls := map[string]MaterialDesc{}
	states := map[string]*groupState{}
	var order []string
	cur := "default"
	states[cur] = &groupState{matName: cur}
	order = append(order, cur)

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parse3(fields[1:])
			if err != nil {
				return nil, err
			}
			positions = append(positions, p)
		case "vt":
			if len(fields) < 3 {
				return nil, newErr("malformed vt line")
			}
			u, err1 := strconv.ParseFloat(fields[1], 32)
			v, err2 := strconv.ParseFloat(fields[2], 32)
			if err1 != nil || err2 != nil {
				return nil, newErr("malformed vt line")
			}
			texcoords = append(texcoords, [2]float32{float32(u), float32(v)})
		case "vn":
			n, err := parse3(fields[1:])
			if err != nil {
				return nil, err
			}
			normals = append(normals, n)
		case "usemtl":
			if len(fields) < 2 {
				return nil, newErr("malformed usemtl line")
			}
			cur = fields[1]
			if _, ok := states[cur]; !ok {
				states[cur] = &groupState{matName: cur}
				order = append(order, cur)
			}
		case "mtllib":
			if len(fields) < 2 {
				return nil, newErr("malformed mtllib line")
			}
			raw, ok := aux(fields[1])
			if !ok {
				return nil, newErr("missing mtl companion: " + fields[1])
			}
			parsed, err := parseMtl(raw)
			if err != nil {
				return nil, err
			}
			for k, v := range parsed {
				mtls[k] = v
			}
		case "f":
			if len(fields) < 4 {
				return nil, newErr("face with fewer than 3 vertices")
			}
			idx := make([][3]int, len(fields)-1)
			for i, f := range fields[1:] {
				vi, ti, ni, err := parseFaceVertex(f)
				if err != nil {
					return nil, err
				}
				idx[i] = [3]int{vi, ti, ni}
			}
			st := states[cur]
			for i := 1; i < len(idx)-1; i++ {
				tri := [3][3]int{idx[0], idx[i], idx[i+1]}
				var verts [3][3]float32
				var uvs [3][2]float32
				var norms [3][3]float32
				haveNorms := true
				for k, ix := range tri {
					vi := resolveIndex(ix[0], len(positions))
					if vi < 0 || vi >= len(positions) {
						return nil, newErr("vertex index out of range")
					}
					verts[k] = positions[vi]
					if ix[1] != 0 {
						ti := resolveIndex(ix[1], len(texcoords))
						if ti >= 0 && ti < len(texcoords) {
							uvs[k] = texcoords[ti]
						}
					}
					if ix[2] != 0 {
						ni := resolveIndex(ix[2], len(normals))
						if ni >= 0 && ni < len(normals) {
							norms[k] = normals[ni]
						} else {
							haveNorms = false
						}
					} else {
						haveNorms = false
					}
				}
				if !haveNorms {
					norms = faceNormal(verts)
				}
				st.verts = append(st.verts, verts)
				st.uvs = append(st.uvs, uvs)
				st.norms = append(st.norms, norms)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf(prefix+"scan %s: %w", path, err)
	}

	var groups []Group
	for _, name := range order {
		st := states[name]
		if len(st.verts) == 0 {
			continue
		}
		tans, bitans := tangentsFromUV(st.verts, st.uvs, st.norms)
		g := Group{
			Verts:      st.verts,
			UVs:        st.uvs,
			Normals:    st.norms,
			Tangents:   tans,
			Bitangents: bitans,
			Mat:        mtls[name],
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func parse3(fields []string) ([3]float32, error) {
	var v [3]float32
	if len(fields) < 3 {
		return v, newErr("expected 3 components")
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, newErr("malformed float component")
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseFaceVertex parses a "v/vt/vn" face token; vt and vn may be
// empty (e.g. "v//vn" or bare "v").
func parseFaceVertex(tok string) (v, t, n int, err error) {
	parts := strings.Split(tok, "/")
	v, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, newErr("malformed face vertex index")
	}
	if len(parts) > 1 && parts[1] != "" {
		if t, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, 0, newErr("malformed face uv index")
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if n, err = strconv.Atoi(parts[2]); err != nil {
			return 0, 0, 0, newErr("malformed face normal index")
		}
	}
	return
}

// resolveIndex converts a 1-based (or negative, relative-to-end)
// OBJ index into a 0-based slice index.
func resolveIndex(i, n int) int {
	if i > 0 {
		return i - 1
	}
	return n + i
}

func faceNormal(v [3][3]float32) [3][3]float32 {
	var e1, e2, n [3]float32
	for i := 0; i < 3; i++ {
		e1[i] = v[1][i] - v[0][i]
		e2[i] = v[2][i] - v[0][i]
	}
	n[0] = e1[1]*e2[2] - e1[2]*e2[1]
	n[1] = e1[2]*e2[0] - e1[0]*e2[2]
	n[2] = e1[0]*e2[1] - e1[1]*e2[0]
	return [3][3]float32{n, n, n}
}

// tangentsFromUV derives a per-vertex tangent/bitangent basis for
// every triangle from its UV gradient, orthogonalized against the
// vertex normal (Gram-Schmidt). Degenerate UV parameterizations
// (zero determinant) fall back to an arbitrary basis perpendicular
// to the normal.
func tangentsFromUV(verts [][3][3]float32, uvs [][3][2]float32, norms [][3][3]float32) (tans, bitans [][3][3]float32) {
	tans = make([][3][3]float32, len(verts))
	bitans = make([][3][3]float32, len(verts))
	for i := range verts {
		v, uv, n := verts[i], uvs[i], norms[i]

		var e1, e2 [3]float32
		for k := 0; k < 3; k++ {
			e1[k] = v[1][k] - v[0][k]
			e2[k] = v[2][k] - v[0][k]
		}
		du1, dv1 := uv[1][0]-uv[0][0], uv[1][1]-uv[0][1]
		du2, dv2 := uv[2][0]-uv[0][0], uv[2][1]-uv[0][1]
		det := du1*dv2 - du2*dv1

		var t, b [3]float32
		if det*det > 1e-12 {
			r := 1 / det
			for k := 0; k < 3; k++ {
				t[k] = (e1[k]*dv2 - e2[k]*dv1) * r
				b[k] = (e2[k]*du1 - e1[k]*du2) * r
			}
		} else {
			t = arbitraryPerp(n[0])
			cross(&b, n[0], t)
		}

		for k := 0; k < 3; k++ {
			nk := n[k]
			tk := orthogonalize(t, nk)
			var bk [3]float32
			cross(&bk, nk, tk)
			tans[i][k] = tk
			bitans[i][k] = bk
		}
	}
	return
}

func orthogonalize(t, n [3]float32) [3]float32 {
	d := t[0]*n[0] + t[1]*n[1] + t[2]*n[2]
	var out [3]float32
	for k := range out {
		out[k] = t[k] - n[k]*d
	}
	l := float32(0)
	for _, x := range out {
		l += x * x
	}
	if l < 1e-12 {
		return arbitraryPerp(n)
	}
	inv := 1 / float32(math.Sqrt(float64(l)))
	for k := range out {
		out[k] *= inv
	}
	return out
}

func cross(out *[3]float32, a, b [3]float32) {
	out[0] = a[1]*b[2] - a[2]*b[1]
	out[1] = a[2]*b[0] - a[0]*b[2]
	out[2] = a[0]*b[1] - a[1]*b[0]
}

func arbitraryPerp(n [3]float32) [3]float32 {
	if n[0]*n[0] < 0.9 {
		return [3]float32{1, 0, 0}
	}
	return [3]float32{0, 1, 0}
}

