// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"gviegas/tracer/envmap"
)

// defaultEnvHeight is the row count FromImage resamples a decoded
// environment image down to; GradientWidth sets the column count for
// both environment forms, so FromStops and FromImage outputs are
// always addressable the same way.
const defaultEnvHeight = 1024

// resolveEnvironment interprets Descriptor.Environment, which is
// either a JSON array of [3]float32 color stops or a JSON string
// naming an image asset, and runs it through the envmap preprocessor.
// A nil/empty field yields a nil Preprocessed (no environment).
func resolveEnvironment(desc *Descriptor, assets AssetMap) (*envmap.Preprocessed, error) {
	if len(desc.Environment) == 0 {
		return nil, nil
	}

	var stops [][3]float32
	if err := json.Unmarshal(desc.Environment, &stops); err == nil {
		return envmap.FromStops(stops)
	}

	var path string
	if err := json.Unmarshal(desc.Environment, &path); err != nil {
		return nil, newErr("environment: neither a color-stop array nor an asset path")
	}
	data, ok := assets[path]
	if !ok {
		return nil, newErr("environment: missing asset: " + path)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, newErr("environment: decoding " + path + ": " + err.Error())
	}
	return envmap.FromImage(img, envmap.GradientWidth, defaultEnvHeight)
}
