package hashing

import (
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/arthur-debert/tidy/pkg/logging"
)

const taskBufferSize = 256

// Task is one file queued for hashing.
type Task struct {
	Path string
	Size int64
}

// Result is the outcome of hashing one file.
type Result struct {
	Path   string
	Size   int64
	Digest string
	Err    error
}

// Pool hashes files concurrently over a bounded worker pool. Hashing is
// read-only, so parallelism here is safe; filesystem mutations stay
// serialized in the executor.
type Pool struct {
	hasher  *Hasher
	workers int
	tasks   chan Task
	results chan Result
	wg      sync.WaitGroup
	pool    *ants.Pool
}

// NewPool creates a hashing pool. workers <= 0 uses GOMAXPROCS.
func NewPool(hasher *Hasher, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		hasher:  hasher,
		workers: workers,
		tasks:   make(chan Task, taskBufferSize),
		results: make(chan Result, taskBufferSize),
	}
}

// Start launches the workers. Results must be drained by the caller.
func (p *Pool) Start() error {
	logger := logging.GetLogger("hashing.pool")
	logger.Debug().Int("workers", p.workers).Msg("Starting hash pool")

	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return err
	}
	p.pool = pool

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		if err := p.pool.Submit(p.worker); err != nil {
			p.wg.Done()
			return err
		}
	}
	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		digest, err := p.hasher.Sum(task.Path)
		p.results <- Result{
			Path:   task.Path,
			Size:   task.Size,
			Digest: digest,
			Err:    err,
		}
	}
}

// Add queues a file for hashing.
func (p *Pool) Add(task Task) {
	p.tasks <- task
}

// Results returns the channel hashing outcomes arrive on.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// CloseAndWait signals that no more tasks are coming and closes the
// results channel once all workers have drained.
func (p *Pool) CloseAndWait() {
	close(p.tasks)
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
	close(p.results)
}
