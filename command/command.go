// Package command defines the render commands produced by a scene build.
//
// A build lowers every drawable path into a geometry upload followed by a
// draw that references it. Commands are plain values: they own no device
// resources. A consumer such as gpu.Renderer maps geometry IDs to its own
// device buffers.
//
// # Ordering
//
// A command referencing a GeometryID is always emitted after the
// UploadGeometryCommand that defines it. IDs are dense and assigned in
// emission order starting at zero, so two builds of the same scene with the
// same options produce identical streams.
package command

import (
	"fmt"

	"github.com/gogpu/pathstream"
)

// CommandType identifies the type of a render command.
type CommandType uint8

const (
	CmdUploadGeometry CommandType = iota // Define a geometry buffer
	CmdDrawPath                          // Stencil-and-cover draw of a geometry
)

var commandTypeNames = [...]string{
	CmdUploadGeometry: "UploadGeometry",
	CmdDrawPath:       "DrawPath",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// RenderCommand is implemented by every command variant.
// The set of variants is closed.
type RenderCommand interface {
	// Type returns the CommandType for this command.
	Type() CommandType

	isRenderCommand()
}

// GeometryID names a geometry buffer within one scene build.
type GeometryID uint32

// InvalidGeometry is the sentinel for "no geometry".
const InvalidGeometry = GeometryID(^uint32(0))

// IsValid returns true unless id is InvalidGeometry.
func (id GeometryID) IsValid() bool {
	return id != InvalidGeometry
}

// UploadGeometryCommand defines a geometry buffer.
type UploadGeometryCommand struct {
	// Geometry is the ID later draws use to reference this buffer.
	Geometry GeometryID

	// Vertices holds fan triangles as consecutive (x, y) pairs in device
	// pixels, three vertices per triangle.
	Vertices []float32

	// Cover is the bounding quad as two triangles (6 vertices, 12 floats).
	Cover [12]float32

	// Bounds is the tight bounding box of Vertices.
	Bounds pathstream.Rect
}

// Type implements RenderCommand.
func (UploadGeometryCommand) Type() CommandType { return CmdUploadGeometry }

func (UploadGeometryCommand) isRenderCommand() {}

// TriangleCount returns the number of fan triangles.
func (c UploadGeometryCommand) TriangleCount() int {
	return len(c.Vertices) / 6
}

// DrawPathCommand fills a previously uploaded geometry.
type DrawPathCommand struct {
	// Geometry references an earlier UploadGeometryCommand.
	Geometry GeometryID

	// Rule selects the stencil operation.
	Rule pathstream.FillRule

	// Color is premultiplied.
	Color pathstream.RGBA

	// SubpixelAA is set when the geometry was built at 3x horizontal
	// resolution for LCD subpixel coverage.
	SubpixelAA bool
}

// Type implements RenderCommand.
func (DrawPathCommand) Type() CommandType { return CmdDrawPath }

func (DrawPathCommand) isRenderCommand() {}

// Describe returns a one-line human readable form of cmd, used by
// diagnostics and the CLI dump mode.
func Describe(cmd RenderCommand) string {
	switch c := cmd.(type) {
	case UploadGeometryCommand:
		return fmt.Sprintf("%s id=%d triangles=%d bounds=[%.2f %.2f %.2f %.2f]",
			c.Type(), c.Geometry, c.TriangleCount(),
			c.Bounds.Min.X, c.Bounds.Min.Y, c.Bounds.Max.X, c.Bounds.Max.Y)
	case DrawPathCommand:
		return fmt.Sprintf("%s id=%d rule=%s color=[%.3f %.3f %.3f %.3f] subpixel=%t",
			c.Type(), c.Geometry, c.Rule, c.Color.R, c.Color.G, c.Color.B, c.Color.A, c.SubpixelAA)
	case nil:
		return "<nil>"
	}
	return cmd.Type().String()
}
