// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build novulkan

package halgpu

import (
	"errors"
)

// VulkanAvailable reports false: the Vulkan backend was left out by the
// novulkan build tag.
func VulkanAvailable() bool { return false }

// OpenVulkan always fails in novulkan builds.
func OpenVulkan(Options) (*Device, error) {
	return nil, errors.New("halgpu: built without vulkan")
}
