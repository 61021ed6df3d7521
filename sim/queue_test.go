package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// manualClock is a Clock tests advance by hand.
type manualClock struct{ t float64 }

func (c *manualClock) Now() float64 { return c.t }

func newTestQueue(t *testing.T, capacity int, clock Clock) *BoundedQueue[string] {
	t.Helper()
	q, err := NewBoundedQueue[string]("test", capacity, clock)
	require.NoError(t, err)
	return q
}

func TestBoundedQueue_FIFO(t *testing.T) {
	q := newTestQueue(t, 3, &manualClock{})
	require.NoError(t, q.Insert("A"))
	require.NoError(t, q.Insert("B"))

	head, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, "A", head)

	got, err := q.RemoveFirst()
	require.NoError(t, err)
	assert.Equal(t, "A", got)
	got, err = q.RemoveFirst()
	require.NoError(t, err)
	assert.Equal(t, "B", got)
	assert.True(t, q.IsEmpty())
}

func TestBoundedQueue_InsertAtCapacity_Fails(t *testing.T) {
	// GIVEN a queue filled to capacity 2
	q := newTestQueue(t, 2, &manualClock{})
	require.NoError(t, q.Insert("A"))
	require.NoError(t, q.Insert("B"))
	assert.True(t, q.IsFull())

	// WHEN inserting at either end
	errBack := q.Insert("C")
	errFront := q.InsertBefore("C", func(string) bool { return true })

	// THEN both fail with ErrQueueFull and the queue never overflows
	assert.ErrorIs(t, errBack, ErrQueueFull)
	assert.ErrorIs(t, errFront, ErrQueueFull)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, []string{"A", "B"}, q.Items())
}

func TestBoundedQueue_ZeroCapacity_AlwaysFull(t *testing.T) {
	q := newTestQueue(t, 0, &manualClock{})

	assert.True(t, q.IsFull())
	assert.True(t, q.IsEmpty())
	assert.ErrorIs(t, q.Insert("A"), ErrQueueFull)
}

func TestBoundedQueue_RemoveFromEmpty_Fails(t *testing.T) {
	q := newTestQueue(t, 1, &manualClock{})

	_, err := q.RemoveFirst()

	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, ok := q.Peek()
	assert.False(t, ok)
}

func TestBoundedQueue_InsertBefore_KeepsPriorityClassFIFO(t *testing.T) {
	// GIVEN a line [U1, U2, A, B] where U* outrank A and B
	q := newTestQueue(t, 5, &manualClock{})
	for _, v := range []string{"U1", "U2", "A", "B"} {
		require.NoError(t, q.Insert(v))
	}
	lowPriority := func(v string) bool { return !strings.HasPrefix(v, "U") }

	// WHEN U3 is inserted before the first low-priority entry
	require.NoError(t, q.InsertBefore("U3", lowPriority))

	// THEN it lands behind the earlier high-priority entries
	assert.Equal(t, []string{"U1", "U2", "U3", "A", "B"}, q.Items())
	assert.Equal(t, 5, q.MaxLength())
}

func TestBoundedQueue_InsertBefore_NoMatchAppends(t *testing.T) {
	q := newTestQueue(t, 3, &manualClock{})
	require.NoError(t, q.Insert("U1"))

	require.NoError(t, q.InsertBefore("U2", func(string) bool { return false }))

	assert.Equal(t, []string{"U1", "U2"}, q.Items())
}

func TestBoundedQueue_InsertBefore_EmptyQueue(t *testing.T) {
	q := newTestQueue(t, 1, &manualClock{})

	require.NoError(t, q.InsertBefore("U1", func(string) bool { return true }))

	assert.Equal(t, []string{"U1"}, q.Items())
}

func TestNewBoundedQueue_InvalidArguments(t *testing.T) {
	_, err := NewBoundedQueue[string]("neg", -1, &manualClock{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewBoundedQueue[string]("noclock", 1, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestBoundedQueue_AverageLength_MatchesWeightedMean(t *testing.T) {
	// GIVEN a queue observed over a known length trace
	clock := &manualClock{}
	q := newTestQueue(t, 10, clock)

	// lengths held over each interval: 0 for 2, 1 for 3, 2 for 1, 1 for 4
	lengths := []float64{0, 1, 2, 1}
	durations := []float64{2, 3, 1, 4}

	clock.t = 2
	require.NoError(t, q.Insert("A"))
	clock.t = 5
	require.NoError(t, q.Insert("B"))
	clock.t = 6
	_, err := q.RemoveFirst()
	require.NoError(t, err)
	clock.t = 10

	// WHEN the average is queried at t=10
	got := q.AverageLength()

	// THEN it equals the duration-weighted mean of the trace
	assert.InDelta(t, stat.Mean(lengths, durations), got, 1e-12)
	assert.InDelta(t, 0.9, got, 1e-12)
	assert.Equal(t, 2, q.MaxLength())
}

func TestBoundedQueue_AverageLength_ZeroWindow(t *testing.T) {
	q := newTestQueue(t, 3, &manualClock{t: 4})
	require.NoError(t, q.Insert("A"))

	assert.Equal(t, 1.0, q.AverageLength())
}

func TestBoundedQueue_AverageLength_StartsAtCreation(t *testing.T) {
	// GIVEN a queue created at t=10
	clock := &manualClock{t: 10}
	q := newTestQueue(t, 3, clock)
	require.NoError(t, q.Insert("A"))

	// WHEN observed at t=14
	clock.t = 14

	// THEN the window is [10, 14], not [0, 14]
	assert.InDelta(t, 1.0, q.AverageLength(), 1e-12)
}

func TestBoundedQueue_String(t *testing.T) {
	q := newTestQueue(t, 3, &manualClock{})
	require.NoError(t, q.Insert("A"))
	require.NoError(t, q.Insert("B"))

	assert.Equal(t, "test[A B]", q.String())
}
