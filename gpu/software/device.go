// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software is a CPU gpu.Device. It emulates stencil-then-cover
// per draw and renders into an *image.RGBA, which makes it the reference
// for pixel tests and the fallback when no GPU backend is available.
//
// Non-zero coverage is accumulated with golang.org/x/image/vector, whose
// signed-area accumulation cancels opposite windings the way stencil
// increment and decrement do. Even-odd coverage counts, for four samples
// per pixel, the parity of fan triangles covering the sample.
//
// Frames are drawn into a back buffer and copied to Image only at
// EndFrame, so a discarded frame never becomes visible.
package software

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/gpu"
)

// ErrForeignGeometry is returned by Draw for buffers created by another
// device or already destroyed.
var ErrForeignGeometry = errors.New("software: geometry not owned by this device")

// Device renders on the CPU.
type Device struct {
	programs map[string]bool
	dest     *gpu.DestFramebuffer

	front, back *image.RGBA
	mask        *image.Alpha
	raster      *vector.Rasterizer
	samples     []uint8

	clear   pathstream.RGBA
	inFrame bool
	frames  int
	draws   int
}

// New returns a device with no framebuffer bound.
func New() *Device {
	return &Device{programs: make(map[string]bool)}
}

// Image returns the last presented frame, or nil before BindFramebuffer.
// The image is overwritten by the next EndFrame.
func (d *Device) Image() *image.RGBA {
	return d.front
}

// Frames returns the number of presented frames.
func (d *Device) Frames() int { return d.frames }

// CreateProgram records the program. The CPU path does not compile it.
func (d *Device) CreateProgram(name string, source []byte) error {
	if len(source) == 0 {
		return fmt.Errorf("software: empty program %q", name)
	}
	d.programs[name] = true
	return nil
}

// BindFramebuffer allocates the frame images. A full-window target is
// rendered the same way as an offscreen one; the host presents Image.
func (d *Device) BindFramebuffer(dest gpu.DestFramebuffer) error {
	if d.dest != nil {
		return gpu.ErrFramebufferBound
	}
	if err := dest.Validate(); err != nil {
		return err
	}
	for _, name := range gpu.Programs {
		if !d.programs[name] {
			return fmt.Errorf("%w: program %q not loaded", gpu.ErrNotReady, name)
		}
	}
	rect := image.Rect(0, 0, dest.Width, dest.Height)
	d.front = image.NewRGBA(rect)
	d.back = image.NewRGBA(rect)
	d.dest = &dest
	return nil
}

// BeginFrame clears the back buffer.
func (d *Device) BeginFrame(clear *pathstream.RGBA) error {
	if d.dest == nil {
		return gpu.ErrNotReady
	}
	d.clear = pathstream.Transparent
	if clear != nil {
		d.clear = *clear
	}
	c := toPixel(d.clear)
	pix := d.back.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c[0], c[1], c[2], c[3]
	}
	d.inFrame = true
	return nil
}

type geometry struct {
	owner     *Device
	label     string
	vertices  []float32
	cover     [12]float32
	destroyed bool
}

func (g *geometry) TriangleCount() int { return len(g.vertices) / 6 }

// CreateGeometry copies the geometry into host memory.
func (d *Device) CreateGeometry(label string, vertices []float32, cover [12]float32) (gpu.GeometryBuffer, error) {
	if len(vertices)%6 != 0 {
		return nil, fmt.Errorf("software: %s: %d floats is not a whole number of triangles", label, len(vertices))
	}
	v := make([]float32, len(vertices))
	copy(v, vertices)
	return &geometry{owner: d, label: label, vertices: v, cover: cover}, nil
}

// DestroyGeometry releases g.
func (d *Device) DestroyGeometry(b gpu.GeometryBuffer) {
	if g, ok := b.(*geometry); ok && g.owner == d {
		g.vertices = nil
		g.destroyed = true
	}
}

// Draw fills g into the back buffer.
func (d *Device) Draw(b gpu.GeometryBuffer, state gpu.RenderState) error {
	if !d.inFrame {
		return fmt.Errorf("%w: no frame in progress", gpu.ErrNotReady)
	}
	g, ok := b.(*geometry)
	if !ok || g.owner != d || g.destroyed {
		return ErrForeignGeometry
	}
	if g.TriangleCount() == 0 {
		return nil
	}

	xscale := 1
	if state.SubpixelAA {
		xscale = 3
	}
	area := d.coverArea(g.cover, xscale)
	if area.Empty() {
		return nil
	}
	switch state.Rule {
	case pathstream.FillRuleEvenOdd:
		d.stencilEvenOdd(g.vertices, xscale, area.Min.X*xscale, area.Max.X*xscale, area.Min.Y, area.Max.Y)
	default:
		d.stencilNonZero(g.vertices, xscale)
	}
	d.coverPass(area, state.Color, xscale)
	d.draws++
	return nil
}

// EndFrame presents the back buffer.
func (d *Device) EndFrame() error {
	if !d.inFrame {
		return fmt.Errorf("%w: no frame in progress", gpu.ErrNotReady)
	}
	copy(d.front.Pix, d.back.Pix)
	d.inFrame = false
	d.frames++
	pathstream.Logger().Debug("software: frame presented", "frame", d.frames, "draws", d.draws)
	d.draws = 0
	return nil
}

// Destroy drops the frame images.
func (d *Device) Destroy() {
	d.front, d.back, d.mask, d.raster, d.samples = nil, nil, nil, nil, nil
	d.inFrame = false
}

// coverArea returns the pixel rectangle of the cover quad clipped to the
// framebuffer.
func (d *Device) coverArea(cover [12]float32, xscale int) image.Rectangle {
	minX, minY := cover[0], cover[1]
	maxX, maxY := minX, minY
	for i := 2; i < len(cover); i += 2 {
		minX, maxX = min(minX, cover[i]), max(maxX, cover[i])
		minY, maxY = min(minY, cover[i+1]), max(maxY, cover[i+1])
	}
	s := float32(xscale)
	r := image.Rect(floor(minX/s), floor(minY), ceil(maxX/s), ceil(maxY))
	return r.Intersect(d.back.Bounds())
}

func (d *Device) ensureMask(w, h int) {
	if d.mask == nil || d.mask.Bounds().Dx() != w || d.mask.Bounds().Dy() != h {
		d.mask = image.NewAlpha(image.Rect(0, 0, w, h))
		d.raster = vector.NewRasterizer(w, h)
		d.samples = make([]uint8, w*h)
	}
}

// stencilNonZero rasterizes the fan triangles into the coverage mask.
func (d *Device) stencilNonZero(v []float32, xscale int) {
	w, h := d.back.Bounds().Dx()*xscale, d.back.Bounds().Dy()
	d.ensureMask(w, h)
	d.raster.Reset(w, h)
	d.raster.DrawOp = draw.Src
	for i := 0; i+5 < len(v); i += 6 {
		d.raster.MoveTo(v[i], v[i+1])
		d.raster.LineTo(v[i+2], v[i+3])
		d.raster.LineTo(v[i+4], v[i+5])
		d.raster.ClosePath()
	}
	d.raster.Draw(d.mask, d.mask.Bounds(), image.Opaque, image.Point{})
}

// sampleOffsets is a rotated 4-sample grid inside a unit pixel.
var sampleOffsets = [4][2]float32{
	{0.375, 0.125}, {0.875, 0.375}, {0.625, 0.875}, {0.125, 0.625},
}

// stencilEvenOdd toggles one bit per sample for every triangle covering
// it, then converts the surviving bits into mask coverage.
func (d *Device) stencilEvenOdd(v []float32, xscale, x0, x1, y0, y1 int) {
	d.ensureMask(d.back.Bounds().Dx()*xscale, d.back.Bounds().Dy())
	stride := d.mask.Stride
	for y := y0; y < y1; y++ {
		clear(d.samples[y*stride+x0 : y*stride+x1])
	}

	for i := 0; i+5 < len(v); i += 6 {
		ax, ay, bx, by, cx, cy := v[i], v[i+1], v[i+2], v[i+3], v[i+4], v[i+5]
		tx0 := max(x0, floor(min(ax, bx, cx)))
		tx1 := min(x1, ceil(max(ax, bx, cx)))
		ty0 := max(y0, floor(min(ay, by, cy)))
		ty1 := min(y1, ceil(max(ay, by, cy)))
		for y := ty0; y < ty1; y++ {
			row := d.samples[y*stride:]
			for x := tx0; x < tx1; x++ {
				for s, off := range sampleOffsets {
					px, py := float32(x)+off[0], float32(y)+off[1]
					if insideTriangle(px, py, ax, ay, bx, by, cx, cy) {
						row[x] ^= 1 << s
					}
				}
			}
		}
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			bits := d.samples[y*stride+x]
			n := int(bits&1 + bits>>1&1 + bits>>2&1 + bits>>3&1)
			d.mask.Pix[y*stride+x] = uint8(n * 255 / 4)
		}
	}
}

// insideTriangle reports whether (px, py) lies strictly inside the
// triangle, in either orientation.
func insideTriangle(px, py, ax, ay, bx, by, cx, cy float32) bool {
	e0 := (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	e1 := (cx-bx)*(py-by) - (cy-by)*(px-bx)
	e2 := (ax-cx)*(py-cy) - (ay-cy)*(px-cx)
	return (e0 > 0 && e1 > 0 && e2 > 0) || (e0 < 0 && e1 < 0 && e2 < 0)
}

// coverPass composites color over area using the mask, source-over with
// premultiplied alpha. With subpixel AA each channel takes the coverage
// of its own third of the pixel.
func (d *Device) coverPass(area image.Rectangle, c pathstream.RGBA, xscale int) {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		mrow := d.mask.Pix[y*d.mask.Stride:]
		prow := d.back.Pix[y*d.back.Stride:]
		for x := area.Min.X; x < area.Max.X; x++ {
			var cov [3]float64
			if xscale == 3 {
				for k := range 3 {
					cov[k] = float64(mrow[3*x+k]) / 255
				}
			} else {
				a := float64(mrow[x]) / 255
				cov = [3]float64{a, a, a}
			}
			if cov[0] == 0 && cov[1] == 0 && cov[2] == 0 {
				continue
			}
			p := prow[4*x : 4*x+4]
			src := [3]float64{c.R, c.G, c.B}
			for k := range 3 {
				dst := float64(p[k]) / 255
				p[k] = to8(src[k]*cov[k] + dst*(1-c.A*cov[k]))
			}
			avg := (cov[0] + cov[1] + cov[2]) / 3
			dstA := float64(p[3]) / 255
			p[3] = to8(c.A*avg + dstA*(1-c.A*avg))
		}
		if xscale == 3 {
			clear(mrow[3*area.Min.X : 3*area.Max.X])
		} else {
			clear(mrow[area.Min.X:area.Max.X])
		}
	}
}

func toPixel(c pathstream.RGBA) [4]uint8 {
	return [4]uint8{to8(c.R), to8(c.G), to8(c.B), to8(c.A)}
}

func to8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

func floor(v float32) int {
	i := int(v)
	if float32(i) > v {
		i--
	}
	return i
}

func ceil(v float32) int {
	i := int(v)
	if float32(i) < v {
		i++
	}
	return i
}

var _ gpu.Device = (*Device)(nil)
