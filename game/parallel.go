package game

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum tribe count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 2

// tribeJob is one tribe handed to a worker for one phase.
type tribeJob struct {
	ts *tribeState
	fn func(*tribeState)
}

// parallelState holds the worker pool that runs per-tribe phases. Tribes
// share no state, so each phase fans out one job per tribe.
type parallelState struct {
	numWorkers int
	numJobs    int

	// Worker pool channels
	workChan chan tribeJob  // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers, tribes int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > tribes {
		workers = tribes
	}
	return &parallelState{
		numWorkers: workers,
		numJobs:    tribes,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers() {
	if p.running {
		return
	}

	// Buffered for a whole phase so dispatch never blocks on completions.
	p.workChan = make(chan tribeJob, p.numJobs)
	p.doneChan = make(chan struct{}, p.numJobs)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if p == nil || !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing jobs until stopped.
func (p *parallelState) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case job, ok := <-p.workChan:
			if !ok {
				return
			}
			job.fn(job.ts)
			p.doneChan <- struct{}{}
		}
	}
}

// forEachTribe runs fn for every tribe and returns when all are done.
func (g *Game) forEachTribe(fn func(*tribeState)) {
	p := g.parallel
	if len(g.tribes) < parallelThreshold || p.numWorkers < 2 {
		for _, ts := range g.tribes {
			fn(ts)
		}
		return
	}

	p.startWorkers()
	for _, ts := range g.tribes {
		p.workChan <- tribeJob{ts: ts, fn: fn}
	}
	for range g.tribes {
		<-p.doneChan
	}
}
