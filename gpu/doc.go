// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu turns a stream of render commands into frames on a Device.
//
// A Renderer owns one Device and walks a fixed lifecycle:
//
//	Idle --BeginScene--> SceneOpen --RenderCommand*--> SceneOpen --EndScene--> Idle
//
// While a scene is open, UploadGeometry commands create device buffers
// and DrawPath commands draw them with stencil-then-cover: the fan
// triangles accumulate winding in the stencil buffer, then the cover quad
// paints every sample whose stencil value is non-zero and resets it.
//
// Misuse of the protocol, such as drawing geometry that was never
// uploaded, fails the scene with a *ProtocolError. The frame is then
// discarded at EndScene. Device failures are reported as *DeviceError and
// return the renderer to Idle at once. A discarded frame is never
// presented.
//
// Devices live in subpackages: halgpu renders through the gogpu/wgpu HAL,
// software renders on the CPU into an *image.RGBA.
//
//	dev := software.New()
//	r, err := gpu.NewRenderer(dev, shaders.EmbeddedLoader{}, gpu.Offscreen(800, 600), gpu.RendererOptions{})
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	if _, err := r.RenderScene(s, scene.BuildOptions{}, nil); err != nil {
//		return err
//	}
//	img := dev.Image()
package gpu
