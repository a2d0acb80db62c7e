// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/pathstream/gpu"
	"github.com/gogpu/pathstream/gpu/halgpu"
	"github.com/gogpu/pathstream/gpu/software"
)

// Built-in backend names.
const (
	BackendVulkan   = "vulkan"
	BackendSoftware = "software"
	BackendNoop     = "noop"
)

func halOptions(opts Options) halgpu.Options {
	return halgpu.Options{SampleCount: opts.SampleCount, SPIRV: opts.SPIRV}
}

// halDevice keeps a failed open from returning a typed nil interface.
func halDevice(dev *halgpu.Device, err error) (gpu.Device, error) {
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func init() {
	Register(BackendVulkan, 100, func(opts Options) (gpu.Device, error) {
		return halDevice(halgpu.OpenVulkan(halOptions(opts)))
	}, halgpu.VulkanAvailable)

	Register(BackendSoftware, 10, func(Options) (gpu.Device, error) {
		return software.New(), nil
	}, nil)

	Register(BackendNoop, 1, func(opts Options) (gpu.Device, error) {
		return halDevice(halgpu.OpenNoop(halOptions(opts)))
	}, nil)
}
