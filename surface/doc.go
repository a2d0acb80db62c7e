// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface is the host boundary where a gpu.Device is acquired.
//
// Backends register a named factory with a priority. The host either asks
// for a backend by name or lets the registry pick the highest-priority
// backend that is available on this system:
//
//	dev, err := surface.OpenBest(surface.Options{})
//	if err != nil {
//	    return err
//	}
//	r, err := gpu.NewRenderer(dev, shaders.EmbeddedLoader{}, gpu.Offscreen(800, 600), gpu.RendererOptions{})
//
// # Built-in backends
//
//   - "vulkan" (100): gogpu/wgpu HAL Vulkan; available when the backend is
//     linked in (build without the novulkan tag) and an adapter opens
//   - "software" (10): CPU rasterizer rendering into *image.RGBA
//   - "noop" (1): HAL noop backend; accepts every command and draws nothing
//
// Third-party backends register themselves the same way:
//
//	func init() {
//	    surface.Register("metal", 100, metalFactory, metalAvailable)
//	}
package surface
