package concurrent

import (
	"runtime"
	"sync"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/internal/parallel"
	"github.com/gogpu/pathstream/scene"
)

// DefaultChunkSize is the number of paths tessellated ahead of delivery
// per worker.
const DefaultChunkSize = 64

// Option configures a ParallelExecutor.
type Option func(*ParallelExecutor)

// WithWorkers sets the pool size. Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *ParallelExecutor) {
		e.workers = n
	}
}

// WithChunkSize sets how many paths one worker tessellates per batch.
// Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(e *ParallelExecutor) {
		if n > 0 {
			e.chunk = n
		}
	}
}

// ParallelExecutor tessellates paths on a worker pool.
//
// A build is processed in windows of workers*chunk paths. All paths of a
// window are tessellated concurrently, then delivered on the goroutine
// that called Execute in scene order. Delivery never overlaps, so the
// listener sees one command at a time. Memory is bounded by the window.
//
// A ParallelExecutor may be shared by builds on different goroutines.
type ParallelExecutor struct {
	workers int
	chunk   int

	once sync.Once
	pool *parallel.WorkerPool
}

// NewParallelExecutor returns an executor. The worker pool starts
// on first use.
func NewParallelExecutor(opts ...Option) *ParallelExecutor {
	e := &ParallelExecutor{chunk: DefaultChunkSize}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Workers returns the configured pool size.
func (e *ParallelExecutor) Workers() int {
	return e.workers
}

func (e *ParallelExecutor) workerPool() *parallel.WorkerPool {
	e.once.Do(func() {
		e.pool = parallel.NewWorkerPool(e.workers)
	})
	return e.pool
}

type slot struct {
	t   *scene.Tessellation
	err error
}

// Execute implements scene.Executor.
func (e *ParallelExecutor) Execute(job *scene.BuildJob) error {
	n := job.Len()
	if n == 0 {
		return nil
	}
	pool := e.workerPool()
	window := e.workers * e.chunk
	slots := make([]slot, min(window, n))

	for base := 0; base < n; base += window {
		end := min(base+window, n)
		var work []func()
		for lo := base; lo < end; lo += e.chunk {
			hi := min(lo+e.chunk, end)
			work = append(work, func() {
				for i := lo; i < hi; i++ {
					t, err := job.Tessellate(i)
					slots[i-base] = slot{t: t, err: err}
				}
			})
		}
		pool.ExecuteAll(work)

		for i := base; i < end; i++ {
			s := slots[i-base]
			slots[i-base] = slot{}
			if err := job.Deliver(i, s.t, s.err); err != nil {
				pathstream.Logger().Debug("concurrent: build stopped", "index", i, "error", err)
				return err
			}
		}
	}
	return nil
}

// Close stops the worker pool. Execute after Close still completes,
// running tessellation on the calling goroutine.
func (e *ParallelExecutor) Close() {
	e.workerPool().Close()
}

var _ scene.Executor = (*ParallelExecutor)(nil)
