// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/gpu"
	"github.com/gogpu/pathstream/gpu/shaders"
	"github.com/gogpu/pathstream/scene"
)

// createNoopDevice opens a raw noop HAL device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	return openDev.Device, openDev.Queue, func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
}

func newNoopRenderer(t *testing.T, dest gpu.DestFramebuffer, opts Options) (*gpu.Renderer, *Device) {
	t.Helper()
	dev, err := OpenNoop(opts)
	if err != nil {
		t.Fatalf("OpenNoop: %v", err)
	}
	r, err := gpu.NewRenderer(dev, shaders.EmbeddedLoader{}, dest, gpu.RendererOptions{})
	if err != nil {
		dev.Destroy()
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(r.Close)
	return r, dev
}

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.New(pathstream.NewRect(0, 0, 100, 100))
	if err != nil {
		t.Fatal(err)
	}
	tri := pathstream.NewPath()
	tri.MoveTo(10, 10)
	tri.LineTo(90, 10)
	tri.LineTo(50, 90)
	tri.Close()
	_ = s.Push(scene.Fill(tri, pathstream.RGB(1, 0, 0)))
	ring := scene.Fill(pathstream.Circle(50, 50, 30), pathstream.RGBA{B: 1, A: 0.5})
	ring.FillRule = pathstream.FillRuleEvenOdd
	_ = s.Push(ring)
	return s
}

// =============================================================================
// Opening
// =============================================================================

func TestOpenNoop(t *testing.T) {
	dev, err := OpenNoop(Options{})
	if err != nil {
		t.Fatalf("OpenNoop: %v", err)
	}
	defer dev.Destroy()
	if dev.Name() != "noop" {
		t.Errorf("Name() = %q", dev.Name())
	}
	if o := dev.Options(); o.SampleCount != DefaultSampleCount || o.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("defaults = %+v", o)
	}
}

func TestOptionsRejectSampleCount(t *testing.T) {
	if _, err := OpenNoop(Options{SampleCount: 3}); err == nil {
		t.Error("sample count 3 accepted")
	}
}

func TestNewRejectsNil(t *testing.T) {
	if _, err := New(nil, nil, Options{}); err == nil {
		t.Error("New(nil, nil) succeeded")
	}
}

type halProvider struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

func (p *halProvider) Device() gpucontext.Device             { return nil }
func (p *halProvider) Queue() gpucontext.Queue               { return nil }
func (p *halProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *halProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }
func (p *halProvider) HalDevice() any                        { return p.device }
func (p *halProvider) HalQueue() any                         { return p.queue }

// nullProvider has no HAL access.
type nullProvider struct{}

func (nullProvider) Device() gpucontext.Device             { return nil }
func (nullProvider) Queue() gpucontext.Queue               { return nil }
func (nullProvider) Adapter() gpucontext.Adapter           { return nil }
func (nullProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

func TestFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev, err := FromProvider(&halProvider{device: device, queue: queue, format: gputypes.TextureFormatRGBA8Unorm}, Options{})
	if err != nil {
		t.Fatalf("FromProvider: %v", err)
	}
	if dev.Options().Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("format = %v, want host surface format", dev.Options().Format)
	}
	// The host keeps the device: Destroy must leave it usable.
	dev.Destroy()
	if _, err := New(device, queue, Options{}); err != nil {
		t.Errorf("device unusable after Destroy: %v", err)
	}

	if _, err := FromProvider(&halProvider{}, Options{}); err == nil {
		t.Error("provider with nil HAL objects accepted")
	}
	if _, err := FromProvider(nullProvider{}, Options{}); err == nil {
		t.Error("provider without HAL access accepted")
	}
}

// =============================================================================
// Rendering
// =============================================================================

func TestBindFramebufferOnce(t *testing.T) {
	_, dev := newNoopRenderer(t, gpu.Offscreen(32, 32), Options{})
	if err := dev.BindFramebuffer(gpu.Offscreen(8, 8)); !errors.Is(err, gpu.ErrFramebufferBound) {
		t.Errorf("second BindFramebuffer = %v, want ErrFramebufferBound", err)
	}
}

func TestBindFramebufferNeedsPrograms(t *testing.T) {
	dev, err := OpenNoop(Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Destroy()
	if err := dev.BindFramebuffer(gpu.Offscreen(8, 8)); !errors.Is(err, gpu.ErrNotReady) {
		t.Errorf("BindFramebuffer without programs = %v, want ErrNotReady", err)
	}
	if err := dev.BeginFrame(nil); !errors.Is(err, gpu.ErrNotReady) {
		t.Errorf("BeginFrame before bind = %v, want ErrNotReady", err)
	}
}

func TestRenderOffscreenFrames(t *testing.T) {
	for _, opts := range []Options{{}, {SampleCount: 1}, {Format: gputypes.TextureFormatRGBA8Unorm}} {
		r, dev := newNoopRenderer(t, gpu.Offscreen(100, 100), opts)
		for range 2 {
			if _, err := r.RenderScene(testScene(t), scene.BuildOptions{}, nil); err != nil {
				t.Fatalf("%+v: RenderScene: %v", opts, err)
			}
		}
		if dev.Frames() != 2 {
			t.Errorf("%+v: Frames() = %d, want 2", opts, dev.Frames())
		}
		img := dev.Image()
		if img == nil || img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
			t.Fatalf("%+v: Image() = %v", opts, img)
		}
		if st := r.Stats(); st.Draws != 4 || st.LiveGeometries != 0 {
			t.Errorf("%+v: stats = %+v", opts, st)
		}
	}
}

func TestRenderSubpixelGeometry(t *testing.T) {
	r, dev := newNoopRenderer(t, gpu.Offscreen(100, 100), Options{})
	if _, err := r.RenderScene(testScene(t), scene.BuildOptions{SubpixelAA: true}, nil); err != nil {
		t.Fatal(err)
	}
	if dev.Frames() != 1 {
		t.Errorf("Frames() = %d", dev.Frames())
	}
}

func TestFullWindowNeedsSurfaceView(t *testing.T) {
	r, _ := newNoopRenderer(t, gpu.FullWindow(64, 64), Options{})
	_, err := r.RenderScene(testScene(t), scene.BuildOptions{}, nil)
	var de *gpu.DeviceError
	if !errors.As(err, &de) || !errors.Is(err, gpu.ErrNotReady) {
		t.Errorf("RenderScene without surface = %v, want DeviceError wrapping ErrNotReady", err)
	}
	if r.State() != gpu.StateIdle {
		t.Errorf("state = %v", r.State())
	}
}

func TestDrawRejectsForeignGeometry(t *testing.T) {
	_, dev := newNoopRenderer(t, gpu.Offscreen(16, 16), Options{})
	_, other := newNoopRenderer(t, gpu.Offscreen(16, 16), Options{})

	if err := dev.BeginFrame(nil); err != nil {
		t.Fatal(err)
	}
	tri := []float32{0, 0, 1, 0, 0, 1}
	foreign, err := other.CreateGeometry("foreign", tri, [12]float32{})
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Draw(foreign, gpu.RenderState{}); !errors.Is(err, ErrForeignGeometry) {
		t.Errorf("Draw(foreign) = %v, want ErrForeignGeometry", err)
	}
	other.DestroyGeometry(foreign)

	g, err := dev.CreateGeometry("g", tri, [12]float32{})
	if err != nil {
		t.Fatal(err)
	}
	if g.TriangleCount() != 1 {
		t.Errorf("TriangleCount() = %d", g.TriangleCount())
	}
	if err := dev.Draw(g, gpu.RenderState{}); err != nil {
		t.Errorf("Draw = %v", err)
	}
	if err := dev.EndFrame(); err != nil {
		t.Errorf("EndFrame = %v", err)
	}
	dev.DestroyGeometry(g)
	if err := dev.Draw(g, gpu.RenderState{}); !errors.Is(err, ErrForeignGeometry) {
		t.Errorf("Draw(destroyed) = %v, want ErrForeignGeometry", err)
	}
	dev.DestroyGeometry(g) // second destroy is ignored
}

func TestEndFrameWithoutBegin(t *testing.T) {
	_, dev := newNoopRenderer(t, gpu.Offscreen(16, 16), Options{})
	if err := dev.EndFrame(); !errors.Is(err, gpu.ErrNotReady) {
		t.Errorf("EndFrame = %v, want ErrNotReady", err)
	}
}

// =============================================================================
// Encoding helpers
// =============================================================================

func TestMakeCoverUniform(t *testing.T) {
	buf := makeCoverUniform(1920, 1080, pathstream.RGBA{R: 0.8, G: 0.4, B: 0.2, A: 0.8})
	if len(buf) != coverUniformSize {
		t.Fatalf("expected %d bytes, got %d", coverUniformSize, len(buf))
	}
	if got := decodeFloat32(buf[0:4]); got != 1920 {
		t.Errorf("width = %v", got)
	}
	if got := decodeFloat32(buf[28:32]); got != 0.8 {
		t.Errorf("alpha = %v", got)
	}
	if len(makeStencilUniform(1, 1)) != stencilUniformSize {
		t.Error("stencil uniform size mismatch")
	}
}

func TestConvertBGRAToRGBA(t *testing.T) {
	src := []byte{
		0x10, 0x20, 0x30, 0xFF,
		0xAA, 0xBB, 0xCC, 0xDD,
	}
	dst := make([]byte, 8)
	convertBGRAToRGBA(src, dst, 2)
	want := []byte{0x30, 0x20, 0x10, 0xFF, 0xCC, 0xBB, 0xAA, 0xDD}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("got % X, want % X", dst, want)
		}
	}
}

func TestFloat32SliceToBytes(t *testing.T) {
	if b := float32SliceToBytes([]float32{1, 2, 3}); len(b) != 12 || decodeFloat32(b[4:8]) != 2 {
		t.Errorf("encoded % X", b)
	}
	if float32SliceToBytes(nil) != nil {
		t.Error("expected nil for empty input")
	}
}
