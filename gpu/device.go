// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/pathstream"
)

// Program names requested from the ResourceLoader at construction.
const (
	ProgramStencilFill = "stencil_fill"
	ProgramCover       = "cover"
)

// Programs lists every program a Renderer loads, in load order.
var Programs = []string{ProgramStencilFill, ProgramCover}

// FramebufferKind selects what a device renders into.
type FramebufferKind int

const (
	// FramebufferFullWindow renders into the window surface of the host.
	FramebufferFullWindow FramebufferKind = iota
	// FramebufferOffscreen renders into a device-owned image.
	FramebufferOffscreen
)

// String returns "full-window" or "offscreen".
func (k FramebufferKind) String() string {
	switch k {
	case FramebufferFullWindow:
		return "full-window"
	case FramebufferOffscreen:
		return "offscreen"
	}
	return fmt.Sprintf("FramebufferKind(%d)", int(k))
}

// DestFramebuffer describes the render target of a Renderer.
type DestFramebuffer struct {
	Kind   FramebufferKind
	Width  int
	Height int
}

// FullWindow targets the host window surface of the given size.
func FullWindow(width, height int) DestFramebuffer {
	return DestFramebuffer{Kind: FramebufferFullWindow, Width: width, Height: height}
}

// Offscreen targets a device-owned image of the given size.
func Offscreen(width, height int) DestFramebuffer {
	return DestFramebuffer{Kind: FramebufferOffscreen, Width: width, Height: height}
}

// Validate reports whether the framebuffer can be bound.
func (d DestFramebuffer) Validate() error {
	if d.Kind != FramebufferFullWindow && d.Kind != FramebufferOffscreen {
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidFramebuffer, d.Kind)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFramebuffer, d.Width, d.Height)
	}
	return nil
}

// GeometryBuffer is device memory holding the fan triangles and cover
// quad of one path. Only the device that created it may use it.
type GeometryBuffer interface {
	// TriangleCount returns the number of fan triangles.
	TriangleCount() int
}

// RenderState is the per-draw state of the cover pass.
type RenderState struct {
	Rule pathstream.FillRule

	// Color is premultiplied.
	Color pathstream.RGBA

	// SubpixelAA means the geometry x axis is at three times device
	// resolution, one unit per color channel.
	SubpixelAA bool
}

// Device is the graphics backend driven by a Renderer.
//
// Calls are made from one goroutine at a time. BeginFrame and EndFrame
// bracket every frame; a frame that is not ended is discarded by the
// next BeginFrame. Draws may be batched until EndFrame.
type Device interface {
	// CreateProgram compiles the program called name.
	CreateProgram(name string, source []byte) error

	// BindFramebuffer selects the render target. It is called once;
	// later calls return ErrFramebufferBound.
	BindFramebuffer(dest DestFramebuffer) error

	// BeginFrame starts a frame cleared to clear, premultiplied.
	// A nil clear means transparent.
	BeginFrame(clear *pathstream.RGBA) error

	// CreateGeometry uploads fan triangles, 6 floats each, and the cover
	// quad of one path.
	CreateGeometry(label string, vertices []float32, cover [12]float32) (GeometryBuffer, error)

	// DestroyGeometry releases a buffer returned by CreateGeometry.
	DestroyGeometry(g GeometryBuffer)

	// Draw fills g with state.
	Draw(g GeometryBuffer, state RenderState) error

	// EndFrame flushes batched draws and presents the frame.
	EndFrame() error

	// Destroy releases every device resource.
	Destroy()
}

// ResourceLoader supplies program sources by name.
type ResourceLoader interface {
	Load(name string) ([]byte, error)
}

// ResourceLoaderFunc adapts a function to ResourceLoader.
type ResourceLoaderFunc func(name string) ([]byte, error)

// Load calls f(name).
func (f ResourceLoaderFunc) Load(name string) ([]byte, error) {
	return f(name)
}
