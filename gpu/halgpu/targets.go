// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targets holds the attachments of the render pass. The MSAA color
// texture is skipped for single-sample rendering and the resolve texture
// for full-window rendering, which resolves into the host surface.
type targets struct {
	msaaTex  hal.Texture
	msaaView hal.TextureView

	stencilTex  hal.Texture
	stencilView hal.TextureView

	resolveTex  hal.Texture
	resolveView hal.TextureView

	width, height uint32
	samples       uint32
}

func (t *targets) ensure(device hal.Device, width, height uint32, format gputypes.TextureFormat, samples uint32, offscreen bool) error {
	t.destroy(device)
	size := hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}

	texture := func(label string, format gputypes.TextureFormat, samples uint32, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         label,
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   samples,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         usage,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
		}
		view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
		if err != nil {
			device.DestroyTexture(tex)
			return nil, nil, fmt.Errorf("create %s view: %w", label, err)
		}
		return tex, view, nil
	}

	var err error
	if samples > 1 {
		t.msaaTex, t.msaaView, err = texture("pathstream_msaa", format, samples, gputypes.TextureUsageRenderAttachment)
		if err != nil {
			return err
		}
	}
	t.stencilTex, t.stencilView, err = texture("pathstream_stencil", stencilFormat, samples, gputypes.TextureUsageRenderAttachment)
	if err != nil {
		t.destroy(device)
		return err
	}
	if offscreen {
		t.resolveTex, t.resolveView, err = texture("pathstream_resolve", format, 1,
			gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
		if err != nil {
			t.destroy(device)
			return err
		}
	}
	t.width, t.height, t.samples = width, height, samples
	return nil
}

// colorAttachment returns the render target view and, for MSAA, the view
// it resolves into. final is the single-sample destination.
func (t *targets) colorAttachment(final hal.TextureView) (view, resolve hal.TextureView) {
	if t.msaaView != nil {
		return t.msaaView, final
	}
	return final, nil
}

func (t *targets) destroy(device hal.Device) {
	views := []*hal.TextureView{&t.resolveView, &t.stencilView, &t.msaaView}
	for _, v := range views {
		if *v != nil {
			device.DestroyTextureView(*v)
			*v = nil
		}
	}
	textures := []*hal.Texture{&t.resolveTex, &t.stencilTex, &t.msaaTex}
	for _, tex := range textures {
		if *tex != nil {
			device.DestroyTexture(*tex)
			*tex = nil
		}
	}
	t.width, t.height = 0, 0
}
