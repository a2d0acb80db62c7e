// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/command"
	"github.com/gogpu/pathstream/scene"
)

// State is the lifecycle state of a Renderer.
type State int

const (
	// StateIdle accepts only BeginScene.
	StateIdle State = iota
	// StateSceneOpen accepts render commands until EndScene.
	StateSceneOpen
	// StateSceneFailed rejects render commands with the recorded error
	// until EndScene or AbortScene discards the frame.
	StateSceneFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSceneOpen:
		return "SceneOpen"
	case StateSceneFailed:
		return "SceneFailed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	// BackgroundColor clears every frame. Nil clears to transparent.
	BackgroundColor *pathstream.RGBA

	// RetainGeometry keeps a scene's buffers alive after EndScene, until
	// the next BeginScene or Close.
	RetainGeometry bool
}

// Stats counts renderer activity since construction.
type Stats struct {
	FramesPresented int
	FramesDiscarded int
	Uploads         int
	Draws           int

	// LiveGeometries is the number of device buffers currently held.
	LiveGeometries int
}

// Renderer executes render commands on a Device.
//
// A Renderer is driven from one goroutine at a time; it is not safe for
// concurrent use. It takes ownership of its Device and destroys it in
// Close.
type Renderer struct {
	device Device
	dest   DestFramebuffer
	opts   RendererOptions
	clear  *pathstream.RGBA

	state    State
	failure  error
	geometry map[command.GeometryID]GeometryBuffer
	stats    Stats
	closed   bool
}

// NewRenderer loads the stencil and cover programs through loader, hands
// them to device and binds dest. On failure the device is left to the
// caller.
func NewRenderer(device Device, loader ResourceLoader, dest DestFramebuffer, opts RendererOptions) (*Renderer, error) {
	if device == nil {
		return nil, errors.New("gpu: nil device")
	}
	if loader == nil {
		return nil, errors.New("gpu: nil resource loader")
	}
	if err := dest.Validate(); err != nil {
		return nil, err
	}

	for _, name := range Programs {
		src, err := loader.Load(name)
		if err != nil {
			return nil, fmt.Errorf("gpu: load program %q: %w", name, err)
		}
		if err := device.CreateProgram(name, src); err != nil {
			return nil, &DeviceError{Op: "CreateProgram " + name, Err: err}
		}
	}
	if err := device.BindFramebuffer(dest); err != nil {
		return nil, &DeviceError{Op: "BindFramebuffer", Err: err}
	}

	r := &Renderer{
		device:   device,
		dest:     dest,
		opts:     opts,
		geometry: make(map[command.GeometryID]GeometryBuffer),
	}
	if opts.BackgroundColor != nil {
		c := opts.BackgroundColor.Premultiply()
		r.clear = &c
	}
	pathstream.Logger().Debug("gpu: renderer ready",
		"target", dest.Kind.String(), "width", dest.Width, "height", dest.Height)
	return r, nil
}

// State returns the lifecycle state.
func (r *Renderer) State() State {
	return r.state
}

// Framebuffer returns the bound destination.
func (r *Renderer) Framebuffer() DestFramebuffer {
	return r.dest
}

// Stats returns activity counters.
func (r *Renderer) Stats() Stats {
	s := r.stats
	s.LiveGeometries = len(r.geometry)
	return s
}

// BeginScene opens a frame. Buffers retained from the previous scene are
// released first.
func (r *Renderer) BeginScene() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.state != StateIdle {
		err := &ProtocolError{Op: "BeginScene", Err: ErrSceneAlreadyOpen}
		r.fail(err)
		return err
	}
	r.release()
	if err := r.device.BeginFrame(r.clear); err != nil {
		return &DeviceError{Op: "BeginFrame", Err: err}
	}
	r.state = StateSceneOpen
	r.failure = nil
	return nil
}

// RenderCommand executes one command in the open scene.
//
// Protocol errors fail the scene: the error is returned now and for every
// later command, and the frame is discarded at EndScene. Device errors
// discard the frame at once and return the renderer to Idle.
func (r *Renderer) RenderCommand(cmd command.RenderCommand) error {
	switch {
	case r.closed:
		return ErrRendererClosed
	case r.state == StateIdle:
		return &ProtocolError{Op: "RenderCommand", Err: ErrNoSceneOpen}
	case r.state == StateSceneFailed:
		return r.failure
	}

	switch c := cmd.(type) {
	case command.UploadGeometryCommand:
		return r.upload(c)
	case command.DrawPathCommand:
		return r.draw(c)
	}
	err := &ProtocolError{Op: "RenderCommand", Err: fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)}
	r.fail(err)
	return err
}

func (r *Renderer) upload(c command.UploadGeometryCommand) error {
	if _, ok := r.geometry[c.Geometry]; ok {
		err := &ProtocolError{Op: "UploadGeometry", Err: fmt.Errorf("%w: id %d", ErrGeometryRedefined, c.Geometry)}
		r.fail(err)
		return err
	}
	g, err := r.device.CreateGeometry(fmt.Sprintf("geometry-%d", c.Geometry), c.Vertices, c.Cover)
	if err != nil {
		return r.deviceFailure("CreateGeometry", err)
	}
	r.geometry[c.Geometry] = g
	r.stats.Uploads++
	return nil
}

func (r *Renderer) draw(c command.DrawPathCommand) error {
	g, ok := r.geometry[c.Geometry]
	if !ok {
		err := &ProtocolError{Op: "DrawPath", Err: fmt.Errorf("%w: id %d", ErrUndefinedGeometry, c.Geometry)}
		r.fail(err)
		return err
	}
	state := RenderState{Rule: c.Rule, Color: c.Color, SubpixelAA: c.SubpixelAA}
	if err := r.device.Draw(g, state); err != nil {
		return r.deviceFailure("Draw", err)
	}
	r.stats.Draws++
	return nil
}

// EndScene presents the open frame and returns the renderer to Idle.
// A failed scene is discarded instead and its error returned.
func (r *Renderer) EndScene() error {
	switch {
	case r.closed:
		return ErrRendererClosed
	case r.state == StateIdle:
		return &ProtocolError{Op: "EndScene", Err: ErrNoSceneOpen}
	case r.state == StateSceneFailed:
		err := r.failure
		r.discard(err)
		return err
	}

	if err := r.device.EndFrame(); err != nil {
		return r.deviceFailure("EndFrame", err)
	}
	r.stats.FramesPresented++
	if !r.opts.RetainGeometry {
		r.release()
	}
	r.state = StateIdle
	pathstream.Logger().Debug("gpu: frame presented",
		"frame", r.stats.FramesPresented, "uploads", r.stats.Uploads, "draws", r.stats.Draws)
	return nil
}

// AbortScene discards the open frame without presenting it.
// It does nothing while Idle.
func (r *Renderer) AbortScene() {
	if r.closed || r.state == StateIdle {
		return
	}
	r.discard(r.failure)
}

// Listener returns a scene.Listener that forwards every command to
// RenderCommand.
func (r *Renderer) Listener() scene.Listener {
	return scene.ListenerFunc(r.RenderCommand)
}

// RenderScene renders s as one frame: BeginScene, s.Build into the
// renderer, EndScene. If the build fails the frame is discarded and the
// build error returned.
func (r *Renderer) RenderScene(s *scene.Scene, opts scene.BuildOptions, exec scene.Executor) (scene.BuildReport, error) {
	if err := r.BeginScene(); err != nil {
		return scene.BuildReport{}, err
	}
	report, err := s.Build(opts, r.Listener(), exec)
	if err != nil {
		r.AbortScene()
		return report, err
	}
	return report, r.EndScene()
}

// Close discards any open frame, releases all buffers and destroys the
// device. Close is idempotent.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.AbortScene()
	r.release()
	r.device.Destroy()
	r.closed = true
}

func (r *Renderer) fail(err error) {
	if r.state == StateSceneOpen {
		r.state = StateSceneFailed
		r.failure = err
	}
}

// deviceFailure discards the frame and wraps err.
func (r *Renderer) deviceFailure(op string, err error) error {
	r.discard(err)
	return &DeviceError{Op: op, Err: err}
}

func (r *Renderer) discard(reason error) {
	if reason != nil {
		pathstream.Logger().Warn("gpu: frame discarded", "error", reason)
	}
	r.release()
	r.state = StateIdle
	r.failure = nil
	r.stats.FramesDiscarded++
}

func (r *Renderer) release() {
	for id, g := range r.geometry {
		r.device.DestroyGeometry(g)
		delete(r.geometry, id)
	}
}
