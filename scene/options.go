package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/pathstream"
)

var (
	// ErrNonInvertibleTransform is returned by Build when the composed
	// render transform is singular. No command is emitted.
	ErrNonInvertibleTransform = errors.New("scene: render transform is not invertible")

	// ErrInvalidOptions is returned by Build for malformed options.
	ErrInvalidOptions = errors.New("scene: invalid build options")
)

// RenderTransform maps scene coordinates to device pixels.
// It is either a Transform2D or a Perspective.
type RenderTransform interface {
	isRenderTransform()
}

// Transform2D is an affine render transform.
type Transform2D struct {
	Matrix pathstream.Matrix
}

func (Transform2D) isRenderTransform() {}

// Perspective projects scene coordinates, placed on the z=0 plane, through
// a 4x4 matrix into clip space, then maps normalized device coordinates
// onto a window of WindowSize pixels with Y pointing down.
type Perspective struct {
	Transform  mgl64.Mat4
	WindowSize pathstream.Point
}

func (Perspective) isRenderTransform() {}

// PathErrorPolicy decides what a failed path does to its build.
type PathErrorPolicy int

const (
	// SkipPath drops the failed path, logs it and continues.
	SkipPath PathErrorPolicy = iota
	// AbortBuild fails the build at the first failed path in scene order.
	AbortBuild
)

// String returns "skip" or "abort".
func (p PathErrorPolicy) String() string {
	switch p {
	case SkipPath:
		return "skip"
	case AbortBuild:
		return "abort"
	}
	return fmt.Sprintf("PathErrorPolicy(%d)", int(p))
}

// BuildOptions controls how a scene is lowered to commands.
// The zero value is an identity transform with no dilation, no subpixel
// anti-aliasing and the SkipPath policy.
type BuildOptions struct {
	// Transform maps scene coordinates to device pixels. Nil means identity.
	Transform RenderTransform

	// Dilation offsets every contour outward by this many device pixels,
	// independently per axis. Used to widen thin geometry for AA.
	Dilation pathstream.Point

	// SubpixelAA builds geometry at three times horizontal resolution for
	// LCD subpixel coverage.
	SubpixelAA bool

	// OnPathError is the per-path failure policy.
	OnPathError PathErrorPolicy

	// Tolerance overrides the curve flattening tolerance in device pixels.
	// Zero means pathstream.DefaultTolerance.
	Tolerance float64
}

// WithTransform returns a copy of o using the affine transform m.
func (o BuildOptions) WithTransform(m pathstream.Matrix) BuildOptions {
	o.Transform = Transform2D{Matrix: m}
	return o
}

func (o BuildOptions) validate() error {
	if !o.Dilation.IsFinite() {
		return fmt.Errorf("%w: dilation %v is not finite", ErrInvalidOptions, o.Dilation)
	}
	if o.OnPathError != SkipPath && o.OnPathError != AbortBuild {
		return fmt.Errorf("%w: unknown path error policy %d", ErrInvalidOptions, int(o.OnPathError))
	}
	if o.Tolerance < 0 || math.IsNaN(o.Tolerance) {
		return fmt.Errorf("%w: tolerance %v", ErrInvalidOptions, o.Tolerance)
	}
	if p, ok := o.Transform.(Perspective); ok {
		if !(p.WindowSize.X > 0 && p.WindowSize.Y > 0) || !p.WindowSize.IsFinite() {
			return fmt.Errorf("%w: perspective window size %v", ErrInvalidOptions, p.WindowSize)
		}
	}
	return nil
}

func (o BuildOptions) tolerance() float64 {
	if o.Tolerance > 0 {
		return o.Tolerance
	}
	return pathstream.DefaultTolerance
}

// projection maps scene points, already in scene coordinates, to device
// pixels. It is immutable and safe for concurrent use.
type projection struct {
	affine      pathstream.Matrix // base plus 2D render transform
	perspective *mgl64.Mat4       // nil for affine transforms
	window      pathstream.Point
}

// behindCameraEpsilon is the smallest clip-space w accepted.
const behindCameraEpsilon = 1e-9

// newProjection composes the render transform with the scene base
// transform. The base transform is applied first.
func newProjection(rt RenderTransform, base pathstream.Matrix) (projection, error) {
	if !base.IsInvertible() {
		return projection{}, fmt.Errorf("%w: scene transform determinant %g", ErrNonInvertibleTransform, base.Determinant())
	}
	switch t := rt.(type) {
	case nil:
		return projection{affine: base}, nil
	case Transform2D:
		m := t.Matrix.Multiply(base)
		if !m.IsInvertible() {
			return projection{}, fmt.Errorf("%w: determinant %g", ErrNonInvertibleTransform, m.Determinant())
		}
		return projection{affine: m}, nil
	case Perspective:
		det := t.Transform.Det()
		if math.IsNaN(det) || math.Abs(det) < 1e-12 {
			return projection{}, fmt.Errorf("%w: perspective determinant %g", ErrNonInvertibleTransform, det)
		}
		m := t.Transform
		return projection{affine: base, perspective: &m, window: t.WindowSize}, nil
	}
	return projection{}, fmt.Errorf("%w: unsupported transform %T", ErrInvalidOptions, rt)
}

// apply maps p to device pixels. ok is false for points at or behind the
// perspective eye plane.
func (pr projection) apply(p pathstream.Point) (pathstream.Point, bool) {
	q := pr.affine.TransformPoint(p)
	if pr.perspective == nil {
		return q, true
	}
	v := pr.perspective.Mul4x1(mgl64.Vec4{q.X, q.Y, 0, 1})
	w := v.W()
	if w <= behindCameraEpsilon {
		return pathstream.Point{}, false
	}
	ndcX, ndcY := v.X()/w, v.Y()/w
	return pathstream.Pt(
		(ndcX+1)*0.5*pr.window.X,
		(1-ndcY)*0.5*pr.window.Y,
	), true
}

// localScale estimates how many device pixels one scene unit spans near
// at, used to turn the device tolerance into a scene tolerance.
func (pr projection) localScale(at pathstream.Point) float64 {
	if pr.perspective == nil {
		return pr.affine.MaxScaleFactor()
	}
	o, ok0 := pr.apply(at)
	x, ok1 := pr.apply(at.Add(pathstream.Pt(1, 0)))
	y, ok2 := pr.apply(at.Add(pathstream.Pt(0, 1)))
	if !ok0 || !ok1 || !ok2 {
		return 1
	}
	return math.Max(x.Sub(o).Length(), y.Sub(o).Length())
}
