// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package render implements the progressive-sampling render loop:
// ping-pong accumulation, camera/tracer/present draw passes hosted
// on ebiten.Game, sample invalidation and resolution scaling while
// moving, and upload-on-completion for a fixed sample budget.
package render

const (
	// The accumulator's resolution scale while the camera is
	// moving, trading sample quality for responsiveness.
	MovingResScale = 0.25

	dflMaxSamples = 64
	dflExposure   = 1.0
)

// Config configures a Loop.
type Config struct {
	// Width/Height of the accumulator and the viewport. Matches
	// the host's "-res" launch parameter.
	//
	// Default is 512x512.
	Width, Height int

	// MaxSamples is the sample budget (spec.md's "max"). With
	// FrameIndex >= 0 the loop uploads and halts once pingpong
	// reaches this count; in interactive mode a sample is still
	// taken at pingpong == MaxSamples, so sampling stops at
	// MaxSamples+1.
	//
	// Default is 64.
	MaxSamples int

	// FrameIndex selects the run mode: -1 is interactive (keeps
	// sampling/presenting indefinitely, clearing on invalidation);
	// >= 0 uploads the canvas and halts once MaxSamples is reached.
	//
	// Default is -1.
	FrameIndex int

	// Exposure is the initial tone-map exposure.
	//
	// Default is 1.0.
	Exposure float32
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Width:      512,
		Height:     512,
		MaxSamples: dflMaxSamples,
		FrameIndex: -1,
		Exposure:   dflExposure,
	}
}

var cfg Config

// Configure replaces the package's configuration with config.
func Configure(config *Config) {
	cfg = *config
}

func init() {
	config := DefaultConfig()
	Configure(&config)
}
