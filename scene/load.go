// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Load reads and decodes the scene descriptor at <dir>/<name>.json
// (spec.md §4.4's "new, ambient" step 0), and loads every regular
// file under dir into an AssetMap keyed by its path relative to
// dir, so the mesh loader's aux-file lookups (textures, .mtl
// siblings) resolve without the compiler needing to know a mesh
// format's file layout in advance.
func Load(dir, name string) (*Descriptor, AssetMap, error) {
	fsys := os.DirFS(dir)

	data, err := fs.ReadFile(fsys, name+".json")
	if err != nil {
		return nil, nil, fmt.Errorf("%sreading descriptor: %w", prefix, err)
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, nil, fmt.Errorf("%smalformed scene descriptor: %w", prefix, err)
	}

	assets := AssetMap{}
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		assets[filepath.ToSlash(path)] = b
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%sreading assets: %w", prefix, err)
	}

	return &desc, assets, nil
}
