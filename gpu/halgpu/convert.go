// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pathstream"
)

// compileSPIRV compiles WGSL to little-endian SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirv, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("naga: %w", err)
	}
	code := make([]uint32, len(spirv)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return code, nil
}

func (d *Device) upload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// float32SliceToBytes encodes floats little-endian. Empty input gives nil.
func float32SliceToBytes(fs []float32) []byte {
	if len(fs) == 0 {
		return nil
	}
	out := make([]byte, len(fs)*4)
	for i, f := range fs {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func makeStencilUniform(w, h float32) []byte {
	return float32SliceToBytes([]float32{w, h, 0, 0})
}

// makeCoverUniform encodes the viewport and the already premultiplied color.
func makeCoverUniform(w, h float32, c pathstream.RGBA) []byte {
	return float32SliceToBytes([]float32{
		w, h, 0, 0,
		float32(c.R), float32(c.G), float32(c.B), float32(c.A),
	})
}

// convertBGRAToRGBA swaps the red and blue channels of n pixels.
func convertBGRAToRGBA(src, dst []byte, n int) {
	for i := range n {
		o := i * 4
		dst[o+0] = src[o+2]
		dst[o+1] = src[o+1]
		dst[o+2] = src[o+0]
		dst[o+3] = src[o+3]
	}
}
