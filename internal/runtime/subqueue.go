package runtime

import (
	"sync"
)

// SubQueue decouples a producer from one slow subscriber. Items are queued in
// memory and dispatched to Chan by a goroutine. The queue starts paused so a
// snapshot can be sent first with SendSnapshot.
type SubQueue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []T
	limit   int
	dropped uint64
	closed  bool
	paused  bool

	outCh chan T
	done  chan struct{}
}

// NewSubQueue returns a paused queue whose channel has outBuf slots. When
// limit is positive at most limit items are held back; the oldest are dropped
// beyond that.
func NewSubQueue[T any](outBuf, limit int) *SubQueue[T] {
	sq := &SubQueue[T]{
		outCh:  make(chan T, outBuf),
		done:   make(chan struct{}),
		limit:  limit,
		paused: true,
	}
	sq.cond = sync.NewCond(&sq.mu)
	go sq.dispatch()
	return sq
}

func (sq *SubQueue[T]) Chan() <-chan T { return sq.outCh }

func (sq *SubQueue[T]) Enqueue(ev T) {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	if sq.closed {
		return
	}
	if sq.limit > 0 && len(sq.queue) >= sq.limit {
		var zero T
		sq.queue[0] = zero
		sq.queue = sq.queue[1:]
		sq.dropped++
	}
	sq.queue = append(sq.queue, ev)
	sq.cond.Signal()
}

// SendSnapshot writes straight to the channel, bypassing the queue. Only call
// it while paused, and size outBuf for the whole snapshot.
func (sq *SubQueue[T]) SendSnapshot(ev T) {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	if sq.closed {
		return
	}
	sq.outCh <- ev
}

func (sq *SubQueue[T]) SetPaused(v bool) {
	sq.mu.Lock()
	sq.paused = v
	sq.cond.Broadcast()
	sq.mu.Unlock()
}

// Dropped returns how many items were discarded because the backlog was full.
func (sq *SubQueue[T]) Dropped() uint64 {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	return sq.dropped
}

// Close stops the dispatcher, discards the backlog and closes the channel.
func (sq *SubQueue[T]) Close() {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	if sq.closed {
		return
	}
	sq.closed = true
	close(sq.done)
	sq.cond.Broadcast()
}

func (sq *SubQueue[T]) dispatch() {
	for {
		sq.mu.Lock()
		for !sq.closed && (sq.paused || len(sq.queue) == 0) {
			sq.cond.Wait()
		}
		if sq.closed {
			sq.queue = nil
			sq.mu.Unlock()
			close(sq.outCh)
			return
		}
		ev := sq.queue[0]
		sq.queue = sq.queue[1:]
		sq.mu.Unlock()

		select {
		case sq.outCh <- ev:
		case <-sq.done:
			// Subscriber stopped reading; the next pass closes outCh.
		}
	}
}
