// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !novulkan

package halgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan backend
)

// VulkanAvailable reports whether the Vulkan backend is linked in.
// Build with -tags novulkan to leave it out.
func VulkanAvailable() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}

// OpenVulkan opens the best Vulkan adapter.
func OpenVulkan(opts Options) (*Device, error) {
	return OpenBackend(gputypes.BackendVulkan, opts)
}
