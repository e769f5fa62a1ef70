package mainloop

import "sync"

// Batcher merges bursts of items into a single main-loop delivery.
// The first Add after a flush schedules one task; every item added before that
// task runs is delivered with it.
type Batcher[T any] struct {
	mu        sync.Mutex
	pending   []T
	scheduled bool
	post      func(func())
	flush     func([]T)
	destroyed bool
}

func NewBatcher[T any](post func(func()), flush func([]T)) *Batcher[T] {
	if post == nil {
		panic("mainloop.NewBatcher: post function cannot be nil")
	}
	if flush == nil {
		panic("mainloop.NewBatcher: flush function cannot be nil")
	}

	return &Batcher[T]{post: post, flush: flush}
}

func (b *Batcher[T]) Add(item T) {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.pending = append(b.pending, item)
	if b.scheduled {
		b.mu.Unlock()
		return
	}
	b.scheduled = true
	post := b.post
	b.mu.Unlock()

	post(func() {
		b.mu.Lock()
		if b.destroyed {
			b.pending = nil
			b.scheduled = false
			b.mu.Unlock()
			return
		}
		items := b.pending
		b.pending = nil
		b.scheduled = false
		b.mu.Unlock()

		if len(items) > 0 {
			b.flush(items)
		}
	})
}

// Destroy drops pending items. Later Adds and already scheduled flushes are
// no-ops.
func (b *Batcher[T]) Destroy() {
	b.mu.Lock()
	b.destroyed = true
	b.pending = nil
	b.mu.Unlock()
}
