package pool

import (
	"go.uber.org/zap"
)

// SharedQueuePool spawns a fixed number of worker goroutines on startup and
// keeps that many active for as long as the pool is in use. Jobs are
// distributed between workers over one shared channel.
//
// Grounded on the reference thread pool's Sentinel: a worker that panics
// mid-job still needs to be replaced so the pool's effective capacity never
// silently shrinks. Go has no destructor to run on an unwinding panic, but
// defer+recover around the same job loop gives the identical guarantee —
// the deferred function only respawns a replacement worker when recover
// actually caught something; a worker that exits because the job channel
// was closed does not get replaced.
type SharedQueuePool struct {
	jobs chan func()
	log  *zap.SugaredLogger
}

// NewSharedQueuePool starts workers goroutines pulling from a shared job
// channel and returns the pool handle used to submit jobs to them.
func NewSharedQueuePool(workers int, log *zap.SugaredLogger) *SharedQueuePool {
	if workers < 1 {
		workers = 1
	}

	p := &SharedQueuePool{jobs: make(chan func()), log: log}
	for range workers {
		p.spawnWorker()
	}
	return p
}

// Spawn hands job to the next idle worker. The job channel is unbuffered,
// so no jobs wait in a queue: Spawn blocks until a worker is free to take it.
func (p *SharedQueuePool) Spawn(job func()) {
	p.jobs <- job
}

// Close stops accepting new jobs and lets every in-flight worker drain its
// current job and exit. It is not safe to call Spawn after Close.
func (p *SharedQueuePool) Close() {
	close(p.jobs)
}

func (p *SharedQueuePool) spawnWorker() {
	go func() {
		// recover() is only non-nil when this worker's goroutine is
		// unwinding from a panic inside job(); a worker that exits because
		// the job channel was closed falls through to a plain return and
		// is never replaced.
		defer func() {
			if r := recover(); r != nil {
				p.log.Errorw("Pool worker recovered from panic, respawning", "panic", r)
				p.spawnWorker()
			}
		}()

		for job := range p.jobs {
			job()
		}
	}()
}
