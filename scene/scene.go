package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/pathstream"
)

var (
	// ErrDegenerateViewBox is returned for a view box without positive
	// finite width and height.
	ErrDegenerateViewBox = errors.New("scene: view box must have positive width and height")

	// ErrSceneBusy is returned when a scene is mutated during a build.
	ErrSceneBusy = errors.New("scene: cannot modify scene while a build is running")

	// ErrNilOutline is returned when pushing a path without an outline.
	ErrNilOutline = errors.New("scene: draw path has no outline")

	// ErrInvalidFillRule is returned when pushing a path with an unknown
	// fill rule.
	ErrInvalidFillRule = errors.New("scene: invalid fill rule")
)

// Scene is an ordered collection of drawable paths with a view box and a
// base transform.
//
// The view box is the device-space region the scene is rendered into;
// paths whose transformed bounds fall entirely outside it are culled.
// The base transform is applied to every path before the render transform
// given at build time.
//
// Scene is safe for concurrent use. Mutations fail with ErrSceneBusy while
// any build is in progress.
type Scene struct {
	mu        sync.Mutex
	paths     []DrawPath
	viewBox   pathstream.Rect
	transform pathstream.Matrix
	building  int
}

// New creates an empty scene with the given view box.
func New(viewBox pathstream.Rect) (*Scene, error) {
	if !viewBox.IsValid() {
		return nil, fmt.Errorf("%w: %+v", ErrDegenerateViewBox, viewBox)
	}
	return &Scene{
		viewBox:   viewBox,
		transform: pathstream.Identity(),
	}, nil
}

// Push appends a path. Paths are drawn in push order.
func (s *Scene) Push(p DrawPath) error {
	if p.Outline == nil {
		return ErrNilOutline
	}
	if !p.FillRule.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidFillRule, p.FillRule)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.building > 0 {
		return ErrSceneBusy
	}
	s.paths = append(s.paths, p)
	return nil
}

// SetViewBox replaces the view box.
func (s *Scene) SetViewBox(r pathstream.Rect) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: %+v", ErrDegenerateViewBox, r)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.building > 0 {
		return ErrSceneBusy
	}
	s.viewBox = r
	return nil
}

// ScaleViewBox multiplies both view box corners by k, as done when
// rendering to a high-DPI surface.
func (s *Scene) ScaleViewBox(k float64) error {
	s.mu.Lock()
	r := s.viewBox.Scale(k)
	s.mu.Unlock()
	return s.SetViewBox(r)
}

// ViewBox returns the view box.
func (s *Scene) ViewBox() pathstream.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewBox
}

// SetTransform replaces the base transform.
func (s *Scene) SetTransform(m pathstream.Matrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.building > 0 {
		return ErrSceneBusy
	}
	s.transform = m
	return nil
}

// Transform returns the base transform.
func (s *Scene) Transform() pathstream.Matrix {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transform
}

// Paths returns a copy of the path list.
func (s *Scene) Paths() []DrawPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.paths)
}

// Len returns the number of paths.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// Bounds returns the union of all outline bounds in scene coordinates,
// before any transform.
func (s *Scene) Bounds() pathstream.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	var r pathstream.Rect
	for _, p := range s.paths {
		r = r.Union(p.Outline.Bounds())
	}
	return r
}

// freeze marks a build as running and returns a snapshot of the scene.
func (s *Scene) freeze() ([]DrawPath, pathstream.Rect, pathstream.Matrix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.building++
	return slices.Clone(s.paths), s.viewBox, s.transform
}

func (s *Scene) thaw() {
	s.mu.Lock()
	s.building--
	s.mu.Unlock()
}
