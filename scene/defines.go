// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"fmt"

	"gviegas/tracer/bvh"
)

// emitDefines produces the fragment shader preprocessor directives
// of spec.md §4.4 step 8. numLightRanges is clamped to at least 1
// since the shader's light-range array may not be declared with
// zero length.
func emitDefines(numLightRanges int, mode RunMode) []string {
	if numLightRanges < 1 {
		numLightRanges = 1
	}
	defs := []string{
		fmt.Sprintf("#define NUM_LIGHT_RANGES %d", numLightRanges),
		fmt.Sprintf("#define LEAF_SIZE %d", bvh.LeafSize),
	}
	if mode.NEE {
		defs = append(defs, "#define USE_EXPLICIT")
	}
	if mode.Alpha {
		defs = append(defs, "#define USE_ALPHA")
	}
	return defs
}

// EnvDefines appends the environment-map bin count define once the
// opaque environment preprocessor (see the envmap package) has run.
func EnvDefines(defs []string, numBins int) []string {
	return append(defs, fmt.Sprintf("#define ENV_BINS %d", numBins))
}
