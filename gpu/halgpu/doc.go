// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package halgpu implements gpu.Device on the gogpu/wgpu HAL.
//
// Paths are drawn with stencil-then-cover inside a single MSAA render
// pass per frame. Three pipelines share one bind group layout and one
// vertex layout (float32x2 at location 0):
//
//   - stencil, non-zero: front faces IncrementWrap, back faces DecrementWrap
//   - stencil, even-odd: both faces Invert
//   - cover: stencil NotEqual 0, PassOp Zero, premultiplied blending
//
// Draws are batched between BeginFrame and EndFrame and encoded together.
// An offscreen target is read back after every frame and exposed through
// Image. A full-window target resolves into the view supplied with
// SetSurfaceView.
//
// Devices are opened with OpenNoop (tests), OpenBackend (a linked native
// backend such as Vulkan) or FromProvider (a device shared by the host
// through gpucontext).
package halgpu
