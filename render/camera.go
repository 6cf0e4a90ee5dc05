// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package render

import "gviegas/tracer/linear"

// Camera is the mutable per-frame camera state of spec.md §3's
// lifecycle list: position, direction, fovScale, lensFeatures,
// envTheta, exposure, saturation. Camera's methods only mutate this
// state; the owning Loop's wrappers of the methods that affect ray
// paths mark the accumulator dirty. Exposure/saturation have no
// setter here (they only affect the tone-map pass).
type Camera struct {
	Pos, Dir     linear.V3
	FovScale     float32
	LensFeature  [2]float32 // (1-1/focalDepth, aperture)
	EnvTheta     float32
	Exposure     float32
	Saturation   float32
}

// Rotate applies a yaw/pitch delta (radians) to Dir about the
// world-up axis and the camera's local right axis, in that order.
func (c *Camera) Rotate(yaw, pitch float32) {
	up := linear.V3{0, 1, 0}
	var right linear.V3
	right.Cross(&c.Dir, &up)
	if right.Len() > 1e-8 {
		right.Norm(&right)
	} else {
		right = linear.V3{1, 0, 0}
	}

	var yawM, pitchM linear.M4
	yawM.RotateAxis(&up, yaw)
	pitchM.RotateAxis(&right, pitch)

	var m linear.M4
	m.Mul(&pitchM, &yawM)

	var dir4, out4 linear.V4
	copy(dir4[:3], c.Dir[:])
	out4.Mul(&m, &dir4)
	c.Dir = linear.V3{out4[0], out4[1], out4[2]}
	c.Dir.Norm(&c.Dir)
}

// Zoom adjusts FovScale by a multiplicative factor (mouse-wheel
// input); factor > 1 narrows the field of view.
func (c *Camera) Zoom(factor float32) {
	if factor > 0 {
		c.FovScale *= factor
	}
}

// Translate moves Pos by delta in camera-local space: delta[0] is
// right, delta[1] is up, delta[2] is forward (the WASD/RF axes).
func (c *Camera) Translate(delta linear.V3) {
	up := linear.V3{0, 1, 0}
	var right linear.V3
	right.Cross(&c.Dir, &up)
	if right.Len() > 1e-8 {
		right.Norm(&right)
	} else {
		right = linear.V3{1, 0, 0}
	}

	var move linear.V3
	var tmp linear.V3
	tmp.Scale(delta[0], &right)
	move.Add(&move, &tmp)
	tmp.Scale(delta[1], &up)
	move.Add(&move, &tmp)
	tmp.Scale(delta[2], &c.Dir)
	move.Add(&move, &tmp)

	c.Pos.Add(&c.Pos, &move)
}

// SetEnvTheta sets the environment-map rotation angle (radians).
func (c *Camera) SetEnvTheta(theta float32) { c.EnvTheta = theta }

// SetLens sets the focal-depth/aperture pair driving the lens
// model, per the autofocus probe's result or a direct slider input.
func (c *Camera) SetLens(lens [2]float32) { c.LensFeature = lens }
