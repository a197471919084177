package workqueue

import (
	"context"
	"errors"
)

var ErrInvalidCapacity = errors.New("queue capacity must be positive")

// Item is either a unit of work or, when Stop is set, the marker that
// tells exactly one consumer there is no more work.
type Item[T any] struct {
	Seq   int
	Value T
	Stop  bool
}

// Queue is a FIFO safe for many producers and consumers.
// Put blocks while the queue is full, Get while it is empty.
type Queue[T any] struct {
	c chan Item[T]
}

func New[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Queue[T]{
		c: make(chan Item[T], capacity),
	}, nil
}

func (q *Queue[T]) put(ctx context.Context, item Item[T]) error {
	select {
	case q.c <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) Put(ctx context.Context, seq int, value T) error {
	return q.put(ctx, Item[T]{Seq: seq, Value: value})
}

// Close enqueues a single stop marker. Call it once per consumer.
func (q *Queue[T]) Close(ctx context.Context) error {
	return q.put(ctx, Item[T]{Stop: true})
}

func (q *Queue[T]) Get(ctx context.Context) (Item[T], error) {
	select {
	case item := <-q.c:
		return item, nil
	case <-ctx.Done():
		return Item[T]{}, ctx.Err()
	}
}

func (q *Queue[T]) Len() int {
	return len(q.c)
}

func (q *Queue[T]) Cap() int {
	return cap(q.c)
}

// Drain feeds items to f until a stop marker arrives, f fails, or ctx ends.
func (q *Queue[T]) Drain(ctx context.Context, f func(Item[T]) error) error {
	for {
		item, err := q.Get(ctx)
		if err != nil {
			return err
		}
		if item.Stop {
			return nil
		}
		if err := f(item); err != nil {
			return err
		}
	}
}
