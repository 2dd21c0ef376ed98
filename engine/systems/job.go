package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/frameflight/engine/core"
)

// JobTask is one unit of background work, typically an asset load.
type JobTask struct {
	// Name shows up in the log when the job fails.
	Name string
	Run  func() (any, error)
	// OnComplete receives the value returned by Run.
	OnComplete func(result any)
	OnFailure  func(err error)
	// OnDone runs last, after OnComplete or OnFailure.
	OnDone func()
}

// JobSystem runs queued jobs on a fixed set of worker goroutines.
type JobSystem struct {
	workers int
	queue   chan JobTask
	wg      sync.WaitGroup
	closed  sync.Once
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(workers int, queueSize int) (*JobSystem, error) {
	if workers <= 0 {
		return nil, ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		workers: workers,
		queue:   make(chan JobTask, queueSize),
	}
	js.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go js.worker()
	}
	return js, nil
}

func (js *JobSystem) worker() {
	defer js.wg.Done()
	for job := range js.queue {
		js.execute(job)
	}
}

func (js *JobSystem) execute(job JobTask) {
	if job.OnDone != nil {
		defer job.OnDone()
	}
	result, err := job.Run()
	if err != nil {
		core.LogError("job %q failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete(result)
	}
}

// Workers reports the size of the pool.
func (js *JobSystem) Workers() int {
	return js.workers
}

// Shutdown waits for the queued jobs and stops the workers. It is safe to
// call more than once.
func (js *JobSystem) Shutdown() error {
	js.closed.Do(func() { close(js.queue) })
	js.wg.Wait()
	return nil
}

// Submit queues a job, blocking while the queue is full.
func (js *JobSystem) Submit(jt JobTask) {
	js.queue <- jt
}
