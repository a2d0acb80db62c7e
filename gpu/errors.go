// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
)

// Protocol errors. Renderer returns them wrapped in *ProtocolError.
var (
	ErrSceneAlreadyOpen  = errors.New("gpu: scene already open")
	ErrNoSceneOpen       = errors.New("gpu: no scene open")
	ErrUndefinedGeometry = errors.New("gpu: draw references undefined geometry")
	ErrGeometryRedefined = errors.New("gpu: geometry uploaded twice in one scene")
	ErrUnknownCommand    = errors.New("gpu: unknown render command")
)

var (
	// ErrFramebufferBound is returned by Device.BindFramebuffer after the
	// first call.
	ErrFramebufferBound = errors.New("gpu: framebuffer already bound")

	// ErrInvalidFramebuffer is returned for framebuffers with no area
	// or an unknown kind.
	ErrInvalidFramebuffer = errors.New("gpu: invalid framebuffer")

	// ErrProgramNotFound is returned by resource loaders for unknown names.
	ErrProgramNotFound = errors.New("gpu: program not found")

	// ErrRendererClosed is returned by every Renderer method after Close.
	ErrRendererClosed = errors.New("gpu: renderer closed")

	// ErrNotReady is returned by devices used before they are configured.
	ErrNotReady = errors.New("gpu: device not ready")
)

// ProtocolError reports a misuse of the renderer protocol.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("gpu: %s: protocol error: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// DeviceError reports a failure of the underlying Device.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("gpu: %s: device error: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }
