package scraper

import (
	"context"
	"sync"
	"time"
)

type Task func(ctx context.Context) error

type Result struct {
	Err error
}

// WorkerPool fans scrape tasks out over a fixed number of workers with an
// optional requests-per-second cap shared across all of them.
type WorkerPool struct {
	workers int
	tasks   chan Task
	rate    *time.Ticker
	wg      sync.WaitGroup
}

func NewWorkerPool(workers, buffer, rps int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	p := &WorkerPool{
		workers: workers,
		tasks:   make(chan Task, buffer),
	}
	if rps > 0 {
		p.rate = time.NewTicker(time.Second / time.Duration(rps))
	}
	return p
}

func (p *WorkerPool) Submit(t Task) {
	if p == nil || t == nil {
		return
	}
	p.tasks <- t
}

// Close stops intake; Run's result channel closes once queued tasks drain.
func (p *WorkerPool) Close() {
	if p == nil {
		return
	}
	close(p.tasks)
}

func (p *WorkerPool) Run(ctx context.Context) <-chan Result {
	out := make(chan Result, p.workers*64)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					if t == nil {
						continue
					}
					if p.rate != nil {
						select {
						case <-ctx.Done():
							return
						case <-p.rate.C:
						}
					}
					select {
					case <-ctx.Done():
						return
					case out <- Result{Err: t(ctx)}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		if p.rate != nil {
			p.rate.Stop()
		}
		close(out)
	}()

	return out
}
