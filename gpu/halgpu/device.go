// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/gpu"
)

// DefaultSampleCount is the MSAA sample count used when Options leaves
// it zero.
const DefaultSampleCount = 4

// ErrForeignGeometry is returned by Draw for buffers created by another
// device or already destroyed.
var ErrForeignGeometry = errors.New("halgpu: geometry not owned by this device")

// Options configures a Device.
type Options struct {
	// SampleCount is 1 or 4. Zero means DefaultSampleCount.
	SampleCount uint32

	// SPIRV compiles programs to SPIR-V with naga instead of handing WGSL
	// to the backend.
	SPIRV bool

	// Format is the color target format. Undefined means BGRA8Unorm, or
	// the host surface format for FromProvider.
	Format gputypes.TextureFormat
}

func (o Options) withDefaults() (Options, error) {
	switch o.SampleCount {
	case 0:
		o.SampleCount = DefaultSampleCount
	case 1, 4:
	default:
		return o, fmt.Errorf("halgpu: unsupported sample count %d", o.SampleCount)
	}
	if o.Format == gputypes.TextureFormatUndefined {
		o.Format = gputypes.TextureFormatBGRA8Unorm
	}
	return o, nil
}

// Device renders through a hal.Device.
type Device struct {
	opts     Options
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance // nil when the host owns the device
	owned    bool
	name     string

	programs  map[string]hal.ShaderModule
	pipelines pipelines
	targets   targets

	dest        *gpu.DestFramebuffer
	surfaceView hal.TextureView

	inFrame bool
	clear   gputypes.Color
	batch   []drawCall
	img     *image.RGBA
	frames  int
}

// New wraps an open HAL device and queue. The caller keeps ownership of
// both: Destroy releases only what the Device created.
func New(device hal.Device, queue hal.Queue, opts Options) (*Device, error) {
	if device == nil || queue == nil {
		return nil, errors.New("halgpu: nil device or queue")
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Device{
		opts:     opts,
		device:   device,
		queue:    queue,
		name:     "hal",
		programs: make(map[string]hal.ShaderModule),
	}, nil
}

// OpenNoop opens a device on the HAL noop backend. It records every call
// and reads back zeroed pixels; use it to exercise the full command path
// without a GPU.
func OpenNoop(opts Options) (*Device, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("halgpu: create noop instance: %w", err)
	}
	return openOn(instance, "noop", opts)
}

// OpenBackend opens the best adapter of a registered HAL backend,
// preferring discrete then integrated GPUs.
func OpenBackend(backend gputypes.Backend, opts Options) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("halgpu: backend %v not available", backend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create instance: %w", err)
	}
	return openOn(instance, fmt.Sprint(backend), opts)
}

func openOn(instance hal.Instance, name string, opts Options) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("halgpu: no adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("halgpu: open device: %w", err)
	}
	d, err := New(openDev.Device, openDev.Queue, opts)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.owned = true
	d.name = name
	pathstream.Logger().Info("halgpu: device opened", "backend", name, "adapter", selected.Info.Name)
	return d, nil
}

// FromProvider adopts the device of a host application. The provider must
// also expose its HAL objects through HalDevice() and HalQueue(). The color
// format defaults to the host surface format.
func FromProvider(p gpucontext.DeviceProvider, opts Options) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, errors.New("halgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("halgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("halgpu: provider HalQueue is not hal.Queue")
	}
	if opts.Format == gputypes.TextureFormatUndefined {
		opts.Format = p.SurfaceFormat()
	}
	d, err := New(device, queue, opts)
	if err != nil {
		return nil, err
	}
	d.name = "provider"
	return d, nil
}

// Name returns the backend the device was opened on.
func (d *Device) Name() string { return d.name }

// Options returns the effective options.
func (d *Device) Options() Options { return d.opts }

// Frames returns the number of frames presented.
func (d *Device) Frames() int { return d.frames }

// SetSurfaceView sets the host surface view that a full-window target
// resolves into at the next EndFrame.
func (d *Device) SetSurfaceView(view hal.TextureView) {
	d.surfaceView = view
}

// Image returns the last frame of an offscreen target, or nil.
// The image is owned by the device and overwritten by the next frame.
func (d *Device) Image() *image.RGBA {
	return d.img
}

// CreateProgram compiles a WGSL program.
func (d *Device) CreateProgram(name string, source []byte) error {
	if old, ok := d.programs[name]; ok {
		d.device.DestroyShaderModule(old)
	}
	desc := &hal.ShaderModuleDescriptor{Label: name + "_shader"}
	if d.opts.SPIRV {
		code, err := compileSPIRV(string(source))
		if err != nil {
			return fmt.Errorf("compile %s: %w", name, err)
		}
		desc.Source = hal.ShaderSource{SPIRV: code}
	} else {
		desc.Source = hal.ShaderSource{WGSL: string(source)}
	}
	module, err := d.device.CreateShaderModule(desc)
	if err != nil {
		return fmt.Errorf("create %s shader: %w", name, err)
	}
	d.programs[name] = module
	return nil
}

// BindFramebuffer creates the pipelines and render targets for dest.
func (d *Device) BindFramebuffer(dest gpu.DestFramebuffer) error {
	if d.dest != nil {
		return gpu.ErrFramebufferBound
	}
	if err := dest.Validate(); err != nil {
		return err
	}
	stencil, cover := d.programs[gpu.ProgramStencilFill], d.programs[gpu.ProgramCover]
	if stencil == nil || cover == nil {
		return fmt.Errorf("%w: programs not loaded", gpu.ErrNotReady)
	}
	if err := d.pipelines.create(d.device, stencil, cover, d.opts.Format, d.opts.SampleCount); err != nil {
		d.pipelines.destroy(d.device)
		return err
	}
	w, h := uint32(dest.Width), uint32(dest.Height) //nolint:gosec // validated positive
	offscreen := dest.Kind == gpu.FramebufferOffscreen
	if err := d.targets.ensure(d.device, w, h, d.opts.Format, d.opts.SampleCount, offscreen); err != nil {
		d.pipelines.destroy(d.device)
		return err
	}
	d.dest = &dest
	if offscreen {
		d.img = image.NewRGBA(image.Rect(0, 0, dest.Width, dest.Height))
	}
	pathstream.Logger().Debug("halgpu: framebuffer bound",
		"kind", dest.Kind.String(), "width", w, "height", h, "samples", d.opts.SampleCount)
	return nil
}

// Destroy releases every resource created by the device, and the HAL
// device itself when it was opened by this package.
func (d *Device) Destroy() {
	d.batch = nil
	d.targets.destroy(d.device)
	d.pipelines.destroy(d.device)
	for name, m := range d.programs {
		d.device.DestroyShaderModule(m)
		delete(d.programs, name)
	}
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
		d.owned = false
		d.instance = nil
	}
}

var _ gpu.Device = (*Device)(nil)
