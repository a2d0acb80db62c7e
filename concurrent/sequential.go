package concurrent

import "github.com/gogpu/pathstream/scene"

// SequentialExecutor runs every path on the calling goroutine.
type SequentialExecutor struct{}

// Sequential returns the sequential executor.
func Sequential() SequentialExecutor {
	return SequentialExecutor{}
}

// Execute implements scene.Executor.
func (SequentialExecutor) Execute(job *scene.BuildJob) error {
	return scene.ExecuteSequential(job)
}

var _ scene.Executor = SequentialExecutor{}
