// Implements BoundedQueue, the capacity-limited FIFO used for the reception
// line and every office line, with time-weighted length statistics.

package sim

import (
	"fmt"
	"slices"
	"strings"
)

// Clock exposes the current virtual time. The Scheduler implements it.
type Clock interface {
	Now() float64
}

// BoundedQueue is a FIFO with a fixed capacity. Inserts fail with
// ErrQueueFull instead of overflowing; the caller decides whether to drop or
// redirect the item.
//
// The queue integrates length over virtual time at every length transition,
// so AverageLength is exact for any observation window starting at creation.
type BoundedQueue[T any] struct {
	name     string
	items    []T
	capacity int
	clock    Clock

	start      float64 // observation window start
	lastChange float64 // time of the last length transition
	area       float64 // Σ length × duration up to lastChange
	maxLen     int
}

// NewBoundedQueue creates an empty queue observed from clock.Now().
func NewBoundedQueue[T any](name string, capacity int, clock Clock) (*BoundedQueue[T], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: queue %q capacity must be >= 0, got %d", ErrInvalidConfiguration, name, capacity)
	}
	if clock == nil {
		return nil, fmt.Errorf("%w: queue %q requires a clock", ErrInvalidConfiguration, name)
	}
	now := clock.Now()
	return &BoundedQueue[T]{
		name:       name,
		items:      make([]T, 0, capacity),
		capacity:   capacity,
		clock:      clock,
		start:      now,
		lastChange: now,
	}, nil
}

// Name returns the queue name used in logs and snapshots.
func (q *BoundedQueue[T]) Name() string { return q.name }

// Len returns the number of queued items.
func (q *BoundedQueue[T]) Len() int { return len(q.items) }

// Capacity returns the configured bound.
func (q *BoundedQueue[T]) Capacity() int { return q.capacity }

// IsEmpty reports whether the queue holds no items.
func (q *BoundedQueue[T]) IsEmpty() bool { return len(q.items) == 0 }

// IsFull reports whether an insert would fail.
func (q *BoundedQueue[T]) IsFull() bool { return len(q.items) >= q.capacity }

// MaxLength returns the largest length observed.
func (q *BoundedQueue[T]) MaxLength() int { return q.maxLen }

// Insert appends item at the back.
func (q *BoundedQueue[T]) Insert(item T) error {
	if q.IsFull() {
		return fmt.Errorf("%w: %s at capacity %d", ErrQueueFull, q.name, q.capacity)
	}
	q.accumulate()
	q.items = append(q.items, item)
	q.maxLen = max(q.maxLen, len(q.items))
	return nil
}

// InsertBefore places item ahead of the first queued element for which
// before returns true, or at the back if there is none. Elements that do not
// satisfy before keep their order ahead of item.
func (q *BoundedQueue[T]) InsertBefore(item T, before func(T) bool) error {
	if q.IsFull() {
		return fmt.Errorf("%w: %s at capacity %d", ErrQueueFull, q.name, q.capacity)
	}
	pos := len(q.items)
	for i, v := range q.items {
		if before(v) {
			pos = i
			break
		}
	}
	q.accumulate()
	q.items = slices.Insert(q.items, pos, item)
	q.maxLen = max(q.maxLen, len(q.items))
	return nil
}

// RemoveFirst pops the head of the queue.
func (q *BoundedQueue[T]) RemoveFirst() (T, error) {
	var zero T
	if len(q.items) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrQueueEmpty, q.name)
	}
	q.accumulate()
	head := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return head, nil
}

// Peek returns the head without removing it. ok is false on an empty queue.
func (q *BoundedQueue[T]) Peek() (item T, ok bool) {
	if len(q.items) == 0 {
		return item, false
	}
	return q.items[0], true
}

// Items returns the queue contents in FIFO order.
// The returned slice is the queue's internal storage; callers MUST NOT modify it.
func (q *BoundedQueue[T]) Items() []T {
	return q.items
}

// AverageLength returns the time-weighted mean length from creation to now.
// A zero-length window reports the current length.
func (q *BoundedQueue[T]) AverageLength() float64 {
	now := q.clock.Now()
	elapsed := now - q.start
	if elapsed <= 0 {
		return float64(len(q.items))
	}
	open := float64(len(q.items)) * (now - q.lastChange)
	return (q.area + open) / elapsed
}

// accumulate closes the current constant-length segment. Must run before
// every length change.
func (q *BoundedQueue[T]) accumulate() {
	now := q.clock.Now()
	q.area += float64(len(q.items)) * (now - q.lastChange)
	q.lastChange = now
}

func (q *BoundedQueue[T]) String() string {
	var sb strings.Builder
	sb.WriteString(q.name)
	sb.WriteString("[")
	for i, val := range q.items {
		sb.WriteString(fmt.Sprint(val))
		if i < len(q.items)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
