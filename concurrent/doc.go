// Package concurrent provides executors for scene.Build and a listener
// guard.
//
// Sequential tessellates every path on the calling goroutine.
// ParallelExecutor tessellates on a worker pool and hands results to the
// listener in scene order, so both executors produce identical command
// streams for the same scene and options.
//
//	exec := concurrent.NewParallelExecutor(concurrent.WithWorkers(8))
//	defer exec.Close()
//	report, err := s.Build(opts, concurrent.Exclusive(listener), exec)
package concurrent
