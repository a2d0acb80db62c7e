// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pathstream"
)

// Uniform layouts.
//
//	stencil: viewport vec2<f32>, pad vec2<f32>               = 16 bytes
//	cover:   viewport vec2<f32>, pad vec2<f32>, color vec4   = 32 bytes
const (
	stencilUniformSize = 16
	coverUniformSize   = 32
)

// vertexStride is 2 x float32.
const vertexStride = 8

const stencilFormat = gputypes.TextureFormatDepth24PlusStencil8

type pipelines struct {
	uniformLayout hal.BindGroupLayout
	layout        hal.PipelineLayout

	nonZero hal.RenderPipeline
	evenOdd hal.RenderPipeline
	cover   hal.RenderPipeline
}

// stencilFor returns the stencil pipeline implementing rule.
func (p *pipelines) stencilFor(rule pathstream.FillRule) hal.RenderPipeline {
	if rule == pathstream.FillRuleEvenOdd {
		return p.evenOdd
	}
	return p.nonZero
}

func stencilFace(compare gputypes.CompareFunction, pass hal.StencilOperation) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     compare,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      pass,
	}
}

func (p *pipelines) create(device hal.Device, stencilShader, coverShader hal.ShaderModule, format gputypes.TextureFormat, samples uint32) error {
	var err error
	p.uniformLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "pathstream_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform bind group layout: %w", err)
	}

	p.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "pathstream_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	vertexLayout := []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
	}
	multisample := gputypes.MultisampleState{Count: samples, Mask: 0xFFFFFFFF}
	primitive := gputypes.PrimitiveState{
		Topology: gputypes.PrimitiveTopologyTriangleList,
		CullMode: gputypes.CullModeNone,
	}

	stencilPipeline := func(label string, front, back hal.StencilOperation) (hal.RenderPipeline, error) {
		return device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  label,
			Layout: p.layout,
			Vertex: hal.VertexState{
				Module:     stencilShader,
				EntryPoint: "vs_main",
				Buffers:    vertexLayout,
			},
			Fragment: &hal.FragmentState{
				Module:     stencilShader,
				EntryPoint: "fs_main",
				Targets: []gputypes.ColorTargetState{
					{Format: format, WriteMask: gputypes.ColorWriteMaskNone},
				},
			},
			DepthStencil: &hal.DepthStencilState{
				Format:            stencilFormat,
				DepthWriteEnabled: false,
				DepthCompare:      gputypes.CompareFunctionAlways,
				StencilFront:      stencilFace(gputypes.CompareFunctionAlways, front),
				StencilBack:       stencilFace(gputypes.CompareFunctionAlways, back),
				StencilReadMask:   0xFF,
				StencilWriteMask:  0xFF,
			},
			Multisample: multisample,
			Primitive:   primitive,
		})
	}

	p.nonZero, err = stencilPipeline("stencil_nonzero_pipeline",
		hal.StencilOperationIncrementWrap, hal.StencilOperationDecrementWrap)
	if err != nil {
		return fmt.Errorf("create non-zero stencil pipeline: %w", err)
	}
	p.evenOdd, err = stencilPipeline("stencil_evenodd_pipeline",
		hal.StencilOperationInvert, hal.StencilOperationInvert)
	if err != nil {
		return fmt.Errorf("create even-odd stencil pipeline: %w", err)
	}

	premul := gputypes.BlendStatePremultiplied()
	p.cover, err = device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "cover_pipeline",
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     coverShader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout,
		},
		Fragment: &hal.FragmentState{
			Module:     coverShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: format, Blend: &premul, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            stencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      stencilFace(gputypes.CompareFunctionNotEqual, hal.StencilOperationZero),
			StencilBack:       stencilFace(gputypes.CompareFunctionNotEqual, hal.StencilOperationZero),
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		},
		Multisample: multisample,
		Primitive:   primitive,
	})
	if err != nil {
		return fmt.Errorf("create cover pipeline: %w", err)
	}
	return nil
}

// destroy releases pipelines in reverse creation order. It tolerates
// partially created state.
func (p *pipelines) destroy(device hal.Device) {
	for _, rp := range []*hal.RenderPipeline{&p.cover, &p.evenOdd, &p.nonZero} {
		if *rp != nil {
			device.DestroyRenderPipeline(*rp)
			*rp = nil
		}
	}
	if p.layout != nil {
		device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.uniformLayout != nil {
		device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
}

func (p *pipelines) ready() bool {
	return p.nonZero != nil && p.evenOdd != nil && p.cover != nil
}
