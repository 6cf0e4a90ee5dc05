// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Command tracer runs the GPU path tracer: it compiles a scene
// descriptor into packed buffers, uploads them to the GPU, and
// either drives an interactive render loop or runs to a fixed
// sample budget and writes the result to disk.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"gviegas/tracer/gpuadapter"
	"gviegas/tracer/meshload"
	"gviegas/tracer/render"
	"gviegas/tracer/scene"
)

var (
	res   = flag.String("res", "512", "render resolution: WxH, N (square), or empty for 512x512")
	frame = flag.Int("frame", -1, "-1 for interactive, >=0 to render one frame and upload it")
	name  = flag.String("scene", "bunny", "scene name; loads scene/<name>.json")
	mode  = flag.String("mode", "", "underscore-joined run-mode tags: test, nee, alpha")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tracer - GPU path tracer scene compiler and render loop\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tracer [options]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tracer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	w, h, err := parseRes(*res)
	if err != nil {
		return err
	}
	m := parseMode(*mode)

	desc, assets, err := scene.Load("scene", *name)
	if err != nil {
		return err
	}

	compiled, err := scene.Compile(desc, assets, meshload.Obj{}, scene.NewMemPacker(), m)
	if err != nil {
		return err
	}

	adapter, err := gpuadapter.NewAdapter(compiled, m.Test)
	if err != nil {
		return err
	}
	defer adapter.Close()

	cfg := render.DefaultConfig()
	cfg.Width, cfg.Height = w, h
	cfg.MaxSamples = compiled.Samples
	cfg.FrameIndex = *frame
	cfg.Exposure = compiled.Exposure

	loop, err := render.NewLoop(compiled, compiled.Tree, adapter, fileUploader{}, *name, cfg)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("tracer: " + *name)
	return ebiten.RunGame(loop)
}

func parseRes(s string) (w, h int, err error) {
	if s == "" {
		return 512, 512, nil
	}
	if i := strings.IndexByte(s, 'x'); i >= 0 {
		w, err = strconv.Atoi(s[:i])
		if err != nil {
			return 0, 0, fmt.Errorf("bad -res: %w", err)
		}
		h, err = strconv.Atoi(s[i+1:])
		if err != nil {
			return 0, 0, fmt.Errorf("bad -res: %w", err)
		}
		return w, h, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, fmt.Errorf("bad -res: %w", err)
	}
	return n, n, nil
}

func parseMode(s string) scene.RunMode {
	var m scene.RunMode
	for _, tag := range strings.Split(s, "_") {
		switch tag {
		case "test":
			m.Test = true
		case "nee":
			m.NEE = true
		case "alpha":
			m.Alpha = true
		}
	}
	return m
}

// fileUploader is the default Uploader: it writes the completed
// canvas to <scene>.<frame>.png, standing in for spec.md's
// out-of-scope network upload endpoint (see render.Uploader).
type fileUploader struct{}

func (fileUploader) Upload(sceneName string, frameIndex int, png []byte) error {
	path := fmt.Sprintf("%s.%d.png", sceneName, frameIndex)
	return os.WriteFile(path, png, 0o644)
}
