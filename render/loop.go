// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package render

import (
	"bytes"
	"errors"
	"image/png"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gviegas/tracer/autofocus"
	"gviegas/tracer/bvh"
	"gviegas/tracer/gpuadapter"
	"gviegas/tracer/linear"
	"gviegas/tracer/scene"
)

const prefix = "render: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// Uploader is the out-of-scope "frame upload" external collaborator
// (spec.md §1/§6): given the completed canvas as a PNG blob, it is
// responsible for delivering it somewhere (a server endpoint, disk,
// whatever the host needs).
type Uploader interface {
	Upload(sceneName string, frameIndex int, png []byte) error
}

// Loop is the progressive render loop of spec.md §4.7, hosted on
// ebiten.Game. Every GPU pass (camera, tracer, present) is issued
// from Update, in the order spec.md's per-tick pseudocode gives;
// Draw only blits the already-composited present target, since
// ebiten.Image draw calls are not required to happen inside Draw.
type Loop struct {
	adapter   *gpuadapter.Adapter
	tree      *bvh.Tree
	uploader  Uploader
	sceneName string

	camera Camera

	pingpong int
	dirty    bool
	moving   bool
	active   bool
	resScale float32
	max      int
	frame    int // -1 interactive; >= 0 upload-on-complete

	accum     [2]*ebiten.Image
	originImg *ebiten.Image
	dirImg    *ebiten.Image
	present   *ebiten.Image

	width, height int
	seed          uint64

	dragging  bool
	lastMX, lastMY int
	done      bool
}

// NewLoop builds a Loop over a compiled scene, ready to run as an
// ebiten.Game. adapter must already hold the uploaded static
// buffers (see gpuadapter.NewAdapter).
func NewLoop(compiled *scene.Compiled, tree *bvh.Tree, adapter *gpuadapter.Adapter, uploader Uploader, sceneName string, c Config) (*Loop, error) {
	if adapter == nil {
		return nil, newErr("nil adapter")
	}
	l := &Loop{
		adapter:   adapter,
		tree:      tree,
		uploader:  uploader,
		sceneName: sceneName,
		width:     c.Width,
		height:    c.Height,
		max:       c.MaxSamples,
		frame:     c.FrameIndex,
		active:    true,
		resScale:  1,
		camera: Camera{
			Pos:        compiled.CameraPos,
			Dir:        compiled.CameraDir,
			FovScale:   compiled.FovScale,
			EnvTheta:   compiled.EnvironmentTheta,
			Exposure:   c.Exposure,
			Saturation: 1,
		},
	}
	l.accum[0] = ebiten.NewImage(c.Width, c.Height)
	l.accum[1] = ebiten.NewImage(c.Width, c.Height)
	l.originImg = ebiten.NewImage(c.Width, c.Height)
	l.dirImg = ebiten.NewImage(c.Width, c.Height)
	l.present = ebiten.NewImage(c.Width, c.Height)
	return l, nil
}

// Rotate applies a yaw/pitch drag delta and marks the accumulator
// dirty (spec.md §4.7's "mouse-drag camera rotation").
func (l *Loop) Rotate(yaw, pitch float32) {
	l.camera.Rotate(yaw, pitch)
	l.dirty = true
	l.moving = true
}

// Zoom applies a mouse-wheel FOV change and marks dirty.
func (l *Loop) Zoom(factor float32) {
	l.camera.Zoom(factor)
	l.dirty = true
}

// SetEnvTheta sets the environment rotation and marks dirty.
func (l *Loop) SetEnvTheta(theta float32) {
	l.camera.SetEnvTheta(theta)
	l.dirty = true
}

// SetLens sets the focal-depth/aperture pair and marks dirty.
func (l *Loop) SetLens(lens [2]float32) {
	l.camera.SetLens(lens)
	l.dirty = true
}

// Translate applies a WASD/RF translation and marks dirty.
func (l *Loop) Translate(delta linear.V3) {
	l.camera.Translate(delta)
	l.dirty = true
	l.moving = true
}

// EndDrag signals that a mouse-drag rotation has ended: the
// accumulator is still marked dirty (the final pose differs from
// whatever was last accumulated), but moving stops, so the next
// dirty-clear runs at full resolution.
func (l *Loop) EndDrag() {
	l.moving = false
	l.dirty = true
}

// SetActive toggles whether new samples are taken. spec.md §4.7 ties
// this to the pointer leaving the viewport on an embedded frame;
// cmd/tracer's windowed host has no such embedding, so pollInput
// drives it directly off cursor bounds instead.
func (l *Loop) SetActive(active bool) {
	l.active = active
}

// Probe runs the autofocus ray cast from the current eye/direction
// and adopts its result as the lens feature, per spec.md §4.6's
// last paragraph. Invoked synchronously from a key/mouse-up handler.
func (l *Loop) Probe(aperture float32) {
	_, lens := autofocus.Probe(l.tree, l.camera.Pos, l.camera.Dir, aperture)
	l.SetLens(lens)
}

// Update implements ebiten.Game. It polls input, then runs spec.md
// §4.7's per-tick steps 1 (resolution scaling), 2 (camera+tracer
// passes), 3 (present), 4 (dirty clear) and 5 (termination/upload).
func (l *Loop) Update() error {
	if l.done {
		return ebiten.Termination
	}
	l.pollInput()

	l.resScale = resScale(l.moving)

	step := tick(tickState{
		pingpong: l.pingpong,
		dirty:    l.dirty,
		moving:   l.moving,
		active:   l.active,
		max:      l.max,
		frame:    l.frame,
	})

	if step.sample {
		l.seed++
		l.drawCamera()
		l.drawTracer(l.pingpong)
	}

	l.drawQuad(step.present)

	if step.clearAccum {
		l.clear()
	}
	l.pingpong = step.next
	l.dirty = false

	if step.terminate {
		if err := l.upload(); err != nil {
			return err
		}
		l.done = true
	}
	return nil
}

// resScale implements spec.md §4.7 step 1.
func resScale(moving bool) float32 {
	if moving {
		return MovingResScale
	}
	return 1
}

// tickState is the pure input to one render-loop decision (spec.md
// §4.7 steps 2/4/5), factored out of Update so the state machine is
// testable without a GPU context.
type tickState struct {
	pingpong int
	dirty    bool
	moving   bool
	active   bool
	max      int
	frame    int
}

// tickResult is the pure output of tick: whether to sample this
// tick, the pingpong ordinal the present pass reads this tick
// (step 3, before any dirty reset), the pingpong counter carried
// into the next tick (step 4, after any dirty reset), whether to
// clear the accumulator, and whether to terminate after upload.
type tickResult struct {
	sample     bool
	present    int
	next       int
	clearAccum bool
	terminate  bool
}

func tick(s tickState) tickResult {
	var r tickResult
	r.present = s.pingpong
	if s.max > 0 && s.pingpong <= s.max && s.active {
		r.sample = true
		r.present = s.pingpong + 1
	}
	r.next = r.present
	if s.dirty {
		r.clearAccum = !s.moving
		r.next = 0
	}
	r.terminate = r.next >= s.max && s.frame >= 0
	return r
}

// Draw implements ebiten.Game: it blits the present target built
// during Update onto the screen.
func (l *Loop) Draw(screen *ebiten.Image) {
	screen.DrawImage(l.present, nil)
}

// Layout implements ebiten.Game, returning the fixed render
// resolution (the Go-idiomatic equivalent of spec.md's fixed HTML
// canvas host, which has no Layout callout of its own).
func (l *Loop) Layout(outsideWidth, outsideHeight int) (int, int) {
	return l.width, l.height
}

func (l *Loop) drawCamera() {
	l.adapter.DrawCamera(l.originImg, l.dirImg, l.camera.Pos, l.camera.Dir, l.camera.FovScale, l.camera.LensFeature, l.seed)
}

func (l *Loop) drawTracer(pingpong int) {
	dst := l.accum[pingpong%2]
	prev := l.accum[(pingpong+1)%2]
	l.adapter.DrawTracer(dst, prev, l.originImg, l.dirImg, l.camera.EnvTheta, l.resScale)
}

func (l *Loop) drawQuad(pingpong int) {
	// The latest sample was written by drawTracer(pingpong-1) into
	// accum[(pingpong-1)%2], which is accum[(pingpong+1)%2].
	src := l.accum[(pingpong+1)%2]
	l.adapter.DrawPresent(l.present, src, l.camera.Exposure, l.camera.Saturation)
}

func (l *Loop) clear() {
	l.accum[0].Clear()
	l.accum[1].Clear()
}

func (l *Loop) upload() error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, l.present); err != nil {
		return newErr("png encode: " + err.Error())
	}
	if l.uploader == nil {
		return nil
	}
	if err := l.uploader.Upload(l.sceneName, l.frame, buf.Bytes()); err != nil {
		return newErr("upload: " + err.Error())
	}
	return nil
}

const dragSensitivity = 0.005
const zoomSensitivity = 0.1
const moveSpeed = 0.05

func (l *Loop) pollInput() {
	mx, my := ebiten.CursorPosition()
	l.SetActive(mx >= 0 && mx < l.width && my >= 0 && my < l.height)

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if l.dragging {
			dx := float32(mx - l.lastMX)
			dy := float32(my - l.lastMY)
			l.Rotate(-dx*dragSensitivity, -dy*dragSensitivity)
		}
		l.dragging = true
		l.lastMX, l.lastMY = mx, my
	} else if l.dragging {
		l.dragging = false
		l.EndDrag()
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		l.Zoom(1 + float32(dy)*zoomSensitivity)
	}

	var delta linear.V3
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		delta[0] += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		delta[0] -= moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyR) {
		delta[1] += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyF) {
		delta[1] -= moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		delta[2] += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		delta[2] -= moveSpeed
	}
	if delta != (linear.V3{}) {
		l.Translate(delta)
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		l.Probe(l.camera.LensFeature[1])
	}
}
