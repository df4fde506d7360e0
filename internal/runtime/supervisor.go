package runtime

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

type worker struct {
	name   string
	run    func(context.Context) error
	closeF func() error
}

// Supervisor runs named workers in their own goroutines. The first worker
// that fails cancels the others.
type Supervisor struct {
	mu      sync.Mutex
	workers []worker
	started int
	wg      sync.WaitGroup
	errOnce sync.Once
	err     error

	runCtx context.Context
	cancel context.CancelFunc
}

func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

// Add registers a worker. closeF may be nil. Workers added after Start are
// never run.
func (s *Supervisor) Add(name string, run func(context.Context) error, closeF func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker{name: name, run: run, closeF: closeF})
}

func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx != nil {
		return fmt.Errorf("supervisor already started")
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.started = len(s.workers)

	for _, w := range s.workers {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			log.WithField("worker", w.name).Debug("Starting worker")
			err := w.run(s.runCtx)
			if err == nil {
				log.WithField("worker", w.name).Debug("Worker exited")
				return
			}
			log.WithField("worker", w.name).WithError(err).Error("Worker failed")
			s.errOnce.Do(func() { s.err = fmt.Errorf("%s: %w", w.name, err) })
			s.cancel()
		}()
	}
	return nil
}

// Wait blocks until ctx is done or a worker fails, closes the workers in
// reverse order of registration and waits for them to return. It reports the
// first worker failure.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	runCtx, cancel := s.runCtx, s.cancel
	workers := append([]worker(nil), s.workers[:s.started]...)
	s.mu.Unlock()

	if runCtx == nil {
		<-ctx.Done()
		return nil
	}

	select {
	case <-ctx.Done():
	case <-runCtx.Done():
	}
	cancel()

	for i := len(workers) - 1; i >= 0; i-- {
		if workers[i].closeF == nil {
			continue
		}
		if err := workers[i].closeF(); err != nil {
			log.WithField("worker", workers[i].name).WithError(err).Warn("Failed to close worker")
		}
	}
	s.wg.Wait()
	return s.err
}
