package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/miasma/systems"
)

// workChunk is a range of arena slots for one worker.
type workChunk struct {
	start, end int
	dt         float32
}

// parallelState is a persistent worker pool for the animator update pass.
type parallelState struct {
	numWorkers int
	slots      []systems.MiasmaSprite // set before chunks are sent

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	return &parallelState{numWorkers: runtime.GOMAXPROCS(0)}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.animator.AdvanceRange(g.grid, g.vis, p.slots[chunk.start:chunk.end], chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// run advances slots across the pool and blocks until every chunk is done.
// Each chunk writes only its own sprites.
func (p *parallelState) run(g *Game, slots []systems.MiasmaSprite, dt float32) {
	p.startWorkers(g)
	p.slots = slots

	n := len(slots)
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	sent := 0
	for start := 0; start < n; start += chunkSize {
		p.workChan <- workChunk{start: start, end: min(start+chunkSize, n), dt: dt}
		sent++
	}
	for i := 0; i < sent; i++ {
		<-p.doneChan
	}
	p.slots = nil
}
