// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package meshload

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// parseMtl parses a Wavefront MTL file into one MaterialDesc per
// "newmtl" block, keyed by material name.
func parseMtl(data []byte) (map[string]MaterialDesc, error) {
	out := map[string]MaterialDesc{}
	var cur string

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				return nil, newErr("malformed newmtl line")
			}
			cur = fields[1]
			out[cur] = MaterialDesc{}
		case "Kd":
			c, err := parse3(fields[1:])
			if err != nil {
				return nil, err
			}
			g := out[cur]
			g.DiffuseColor = &c
			out[cur] = g
		case "Pr":
			if len(fields) < 2 {
				return nil, newErr("malformed Pr line")
			}
			r, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return nil, newErr("malformed Pr line")
			}
			c := [3]float32{0, float32(r), 0}
			g := out[cur]
			g.RoughColor = &c
			out[cur] = g
		case "Ke":
			c, err := parse3(fields[1:])
			if err != nil {
				return nil, err
			}
			g := out[cur]
			g.EmissionColor = &c
			out[cur] = g
		case "Ni":
			if len(fields) < 2 {
				return nil, newErr("malformed Ni line")
			}
			ior, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return nil, newErr("malformed Ni line")
			}
			v := float32(ior)
			g := out[cur]
			g.IOR = &v
			out[cur] = g
		case "map_Kd":
			g := out[cur]
			g.DiffuseTex = fields[len(fields)-1]
			g.DiffuseColor = nil // texture wins over a flat fallback color
			out[cur] = g
		case "map_Pr":
			g := out[cur]
			g.RoughTex = fields[len(fields)-1]
			out[cur] = g
		case "map_Ke":
			g := out[cur]
			g.EmissionTex = fields[len(fields)-1]
			out[cur] = g
		case "map_bump", "bump":
			g := out[cur]
			g.BumpTex = fields[len(fields)-1]
			out[cur] = g
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
