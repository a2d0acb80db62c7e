package scene

import (
	"errors"
	"fmt"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/command"
)

var (
	// ErrOutOfOrder is returned by BuildJob.Deliver when an executor hands
	// results over out of scene order.
	ErrOutOfOrder = errors.New("scene: executor delivered paths out of order")

	// ErrIncompleteBuild is returned by Build when an executor returns
	// without delivering every path.
	ErrIncompleteBuild = errors.New("scene: executor returned before delivering all paths")

	// ErrNilListener is returned by Build without a listener.
	ErrNilListener = errors.New("scene: nil listener")
)

// Executor drives the tessellation of a build job.
//
// Implementations call job.Tessellate for every index in any order and on
// any goroutine, and job.Deliver for index 0, 1, ... Len()-1 strictly in
// order and never concurrently. Execute returns the first error Deliver
// reports, or nil.
type Executor interface {
	Execute(job *BuildJob) error
}

// PathError reports a path that failed to tessellate or deliver.
type PathError struct {
	Index int
	Name  string
	Err   error
}

func (e *PathError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("scene: path %d (%s): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("scene: path %d: %v", e.Index, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// BuildReport summarizes a finished build.
type BuildReport struct {
	Paths    int // paths in the scene
	Drawn    int // paths that produced commands
	Empty    int // paths with no visible area
	Culled   int // paths entirely outside the view box
	Skipped  int // failed paths dropped by SkipPath
	Commands int // commands delivered to the listener

	// Errors lists the skipped paths.
	Errors []*PathError
}

// BuildJob is the unit of work handed to an Executor.
type BuildJob struct {
	paths    []DrawPath
	viewBox  pathstream.Rect
	proj     projection
	opts     BuildOptions
	listener Listener

	next   int
	nextID command.GeometryID
	failed error
	report BuildReport
}

// Len returns the number of paths in the job.
func (j *BuildJob) Len() int {
	return len(j.paths)
}

// Tessellate lowers path i to device geometry. It only reads immutable
// job state and is safe to call concurrently for different or equal i.
func (j *BuildJob) Tessellate(i int) (*Tessellation, error) {
	return tessellate(&j.paths[i], j.proj, j.viewBox, j.opts)
}

// Deliver hands the tessellation of path i, or its error, to the listener.
// Calls must be made for i = 0, 1, ... in order. Deliver assigns geometry
// IDs, so the command stream depends only on scene order.
//
// It returns a non-nil error when the build must stop: an AbortBuild path
// failure, a listener error or a protocol breach by the executor. After
// that every further call returns the same error.
func (j *BuildJob) Deliver(i int, t *Tessellation, err error) error {
	if j.failed != nil {
		return j.failed
	}
	if i != j.next {
		j.failed = fmt.Errorf("%w: got path %d, want %d", ErrOutOfOrder, i, j.next)
		return j.failed
	}
	j.next++

	dp := &j.paths[i]
	if err != nil {
		pe := &PathError{Index: i, Name: dp.Name, Err: err}
		if j.opts.OnPathError == AbortBuild {
			j.failed = pe
			return pe
		}
		j.report.Skipped++
		j.report.Errors = append(j.report.Errors, pe)
		pathstream.Logger().Warn("scene: skipping path", "index", i, "name", dp.Name, "error", err)
		return nil
	}

	switch {
	case t == nil || t.Culled:
		j.report.Culled++
		return nil
	case t.TriangleCount() == 0:
		j.report.Empty++
		return nil
	}

	id := j.nextID
	j.nextID++
	upload := command.UploadGeometryCommand{
		Geometry: id,
		Vertices: t.Vertices,
		Cover:    t.Cover,
		Bounds:   t.Bounds,
	}
	draw := command.DrawPathCommand{
		Geometry:   id,
		Rule:       t.Rule,
		Color:      dp.Color.Premultiply(),
		SubpixelAA: j.opts.SubpixelAA,
	}
	for _, cmd := range []command.RenderCommand{upload, draw} {
		if err := j.listener.Send(cmd); err != nil {
			j.failed = &PathError{Index: i, Name: dp.Name, Err: fmt.Errorf("listener rejected %s: %w", cmd.Type(), err)}
			return j.failed
		}
		j.report.Commands++
	}
	j.report.Drawn++
	return nil
}

// Delivered returns how many paths have been delivered so far.
func (j *BuildJob) Delivered() int {
	return j.next
}

// ExecuteSequential tessellates and delivers every path of job on the
// calling goroutine, one after the other.
func ExecuteSequential(job *BuildJob) error {
	for i := range job.Len() {
		t, err := job.Tessellate(i)
		if err := job.Deliver(i, t, err); err != nil {
			return err
		}
	}
	return nil
}
