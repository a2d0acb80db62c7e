// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/gpu"
)

// fenceTimeout bounds the wait for a submitted frame.
const fenceTimeout = 5 * time.Second

// geometry is a vertex buffer pair: fan triangles and cover quad.
type geometry struct {
	owner     *Device
	label     string
	vertices  hal.Buffer
	cover     hal.Buffer
	count     uint32
	destroyed bool
}

func (g *geometry) TriangleCount() int { return int(g.count / 3) }

type drawCall struct {
	g     *geometry
	state gpu.RenderState
}

// BeginFrame starts a frame. Draws batched by an unfinished frame are
// dropped.
func (d *Device) BeginFrame(clear *pathstream.RGBA) error {
	if d.dest == nil || !d.pipelines.ready() {
		return gpu.ErrNotReady
	}
	d.batch = d.batch[:0]
	d.clear = gputypes.Color{}
	if clear != nil {
		d.clear = gputypes.Color{R: clear.R, G: clear.G, B: clear.B, A: clear.A}
	}
	d.inFrame = true
	return nil
}

// CreateGeometry uploads the fan triangles and cover quad of one path.
func (d *Device) CreateGeometry(label string, vertices []float32, cover [12]float32) (gpu.GeometryBuffer, error) {
	g := &geometry{owner: d, label: label, count: uint32(len(vertices) / 2)} //nolint:gosec // bounded by scene.MaxTriangles
	if len(vertices) > 0 {
		buf, err := d.upload(label+"_fan", float32SliceToBytes(vertices), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return nil, err
		}
		g.vertices = buf
	}
	buf, err := d.upload(label+"_cover", float32SliceToBytes(cover[:]), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		if g.vertices != nil {
			d.device.DestroyBuffer(g.vertices)
		}
		return nil, err
	}
	g.cover = buf
	return g, nil
}

// DestroyGeometry releases the buffers of g. It must not be called for
// geometry drawn in the current, unfinished frame.
func (d *Device) DestroyGeometry(b gpu.GeometryBuffer) {
	g, ok := b.(*geometry)
	if !ok || g.owner != d || g.destroyed {
		return
	}
	if g.vertices != nil {
		d.device.DestroyBuffer(g.vertices)
	}
	d.device.DestroyBuffer(g.cover)
	g.destroyed = true
}

// Draw batches one stencil-then-cover fill of b.
func (d *Device) Draw(b gpu.GeometryBuffer, state gpu.RenderState) error {
	if !d.inFrame {
		return fmt.Errorf("%w: no frame in progress", gpu.ErrNotReady)
	}
	g, ok := b.(*geometry)
	if !ok || g.owner != d || g.destroyed {
		return ErrForeignGeometry
	}
	if g.count == 0 {
		return nil
	}
	d.batch = append(d.batch, drawCall{g: g, state: state})
	return nil
}

// EndFrame encodes every batched draw into one render pass, submits it,
// waits for completion and, for offscreen targets, reads the frame back.
func (d *Device) EndFrame() error {
	if !d.inFrame {
		return fmt.Errorf("%w: no frame in progress", gpu.ErrNotReady)
	}
	d.inFrame = false
	defer func() { d.batch = d.batch[:0] }()

	final := d.targets.resolveView
	if d.dest.Kind == gpu.FramebufferFullWindow {
		final = d.surfaceView
	}
	if final == nil {
		return fmt.Errorf("%w: no surface view", gpu.ErrNotReady)
	}

	bindings, err := d.frameBindings()
	defer bindings.destroy(d.device)
	if err != nil {
		return err
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "pathstream_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("pathstream_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	view, resolve := d.targets.colorAttachment(final)
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "pathstream_stencil_cover_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          view,
			ResolveTarget: resolve,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    d.clear,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              d.targets.stencilView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	for i, call := range d.batch {
		b := bindings.groups[i]
		rp.SetPipeline(d.pipelines.stencilFor(call.state.Rule))
		rp.SetBindGroup(0, b.stencil, nil)
		rp.SetVertexBuffer(0, call.g.vertices, 0)
		rp.Draw(call.g.count, 1, 0, 0)

		rp.SetPipeline(d.pipelines.cover)
		rp.SetBindGroup(0, b.cover, nil)
		rp.SetVertexBuffer(0, call.g.cover, 0)
		rp.Draw(6, 1, 0, 0)
	}
	rp.End()

	if d.dest.Kind == gpu.FramebufferOffscreen {
		return d.submitReadback(encoder)
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	if err := d.submit(cmdBuf); err != nil {
		return err
	}
	d.frames++
	return nil
}

type frameGroups struct {
	stencil, cover hal.BindGroup
}

type frameBindings struct {
	buffers []hal.Buffer
	groups  []frameGroups
}

func (b *frameBindings) destroy(device hal.Device) {
	for _, g := range b.groups {
		if g.stencil != nil {
			device.DestroyBindGroup(g.stencil)
		}
		if g.cover != nil {
			device.DestroyBindGroup(g.cover)
		}
	}
	for _, buf := range b.buffers {
		device.DestroyBuffer(buf)
	}
}

// frameBindings creates the per-draw uniform buffers and bind groups.
// Subpixel geometry is mapped back to device width by a wider viewport.
func (d *Device) frameBindings() (*frameBindings, error) {
	b := &frameBindings{}
	w, h := float32(d.targets.width), float32(d.targets.height)
	bind := func(label string, data []byte) (hal.BindGroup, error) {
		buf, err := d.upload(label, data, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			return nil, err
		}
		b.buffers = append(b.buffers, buf)
		group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  label + "_bind",
			Layout: d.pipelines.uniformLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: buf.NativeHandle(), Offset: 0, Size: uint64(len(data)),
				}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create %s bind group: %w", label, err)
		}
		return group, nil
	}

	for _, call := range d.batch {
		vw := w
		if call.state.SubpixelAA {
			vw *= 3
		}
		var g frameGroups
		var err error
		if g.stencil, err = bind(call.g.label+"_stencil_uniform", makeStencilUniform(vw, h)); err != nil {
			return b, err
		}
		b.groups = append(b.groups, g)
		if g.cover, err = bind(call.g.label+"_cover_uniform", makeCoverUniform(vw, h, call.state.Color)); err != nil {
			return b, err
		}
		b.groups[len(b.groups)-1] = g
	}
	return b, nil
}

func (d *Device) submit(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)
	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// submitReadback copies the resolve texture into a staging buffer and
// converts it into d.img.
func (d *Device) submitReadback(encoder hal.CommandEncoder) error {
	w, h := d.targets.width, d.targets.height
	resolve := d.targets.resolveTex

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: resolve,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pathstream_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(resolve, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: resolve, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: resolve,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	if err := d.submit(cmdBuf); err != nil {
		return err
	}

	readback := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	swap := d.opts.Format == gputypes.TextureFormatBGRA8Unorm
	for row := range int(h) {
		src := readback[row*int(alignedBytesPerRow) : row*int(alignedBytesPerRow)+int(bytesPerRow)]
		dst := d.img.Pix[row*d.img.Stride : row*d.img.Stride+int(bytesPerRow)]
		if swap {
			convertBGRAToRGBA(src, dst, int(w))
		} else {
			copy(dst, src)
		}
	}
	d.frames++
	return nil
}
