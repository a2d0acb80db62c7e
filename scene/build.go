package scene

import (
	"time"

	"github.com/gogpu/pathstream"
)

// Build lowers the scene to render commands and sends them to listener.
//
// The render transform in opts is composed with the scene base transform
// (base first), checked for invertibility and used to map every path to
// device pixels. The executor decides how tessellation is scheduled; a nil
// executor tessellates sequentially on the calling goroutine. Whatever the
// executor, listener sees the same commands in the same order.
//
// Build returns after the last command is delivered. Invalid options and
// singular transforms fail before any command is sent. A failed path is
// skipped or aborts the build according to opts.OnPathError; an aborted
// build returns a *PathError. The scene cannot be modified while Build runs.
func (s *Scene) Build(opts BuildOptions, listener Listener, exec Executor) (BuildReport, error) {
	if listener == nil {
		return BuildReport{}, ErrNilListener
	}
	if err := opts.validate(); err != nil {
		return BuildReport{}, err
	}

	paths, viewBox, base := s.freeze()
	defer s.thaw()

	proj, err := newProjection(opts.Transform, base)
	if err != nil {
		return BuildReport{}, err
	}

	job := &BuildJob{
		paths:    paths,
		viewBox:  viewBox,
		proj:     proj,
		opts:     opts,
		listener: listener,
	}
	job.report.Paths = len(paths)

	start := time.Now()
	if exec == nil {
		err = ExecuteSequential(job)
	} else {
		err = exec.Execute(job)
	}
	if err == nil && job.failed != nil {
		err = job.failed
	}
	if err == nil && job.Delivered() != job.Len() {
		err = ErrIncompleteBuild
	}
	if err != nil {
		return job.report, err
	}

	pathstream.Logger().Debug("scene: build complete",
		"paths", job.report.Paths,
		"drawn", job.report.Drawn,
		"skipped", job.report.Skipped,
		"culled", job.report.Culled,
		"commands", job.report.Commands,
		"elapsed", time.Since(start),
	)
	return job.report, nil
}
