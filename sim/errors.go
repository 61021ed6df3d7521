package sim

import "errors"

// Fatal conditions abort a run; queue conditions are recovered by the
// routing logic and only show up in statistics.
var (
	// ErrInvalidConfiguration is returned for negative capacities, rates or
	// horizons, missing resources, or a negative scheduling delay.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNullEntityReference is returned when a handler runs without a
	// patient, receptionist or office it requires. It indicates a
	// scheduling bug.
	ErrNullEntityReference = errors.New("null entity reference")

	// ErrTimestampOrder is returned when a patient timestamp would precede
	// an earlier lifecycle timestamp.
	ErrTimestampOrder = errors.New("patient timestamps out of order")

	// ErrResourceBusy is returned when an event targets a receptionist or
	// office that is already serving a patient.
	ErrResourceBusy = errors.New("resource busy")

	// ErrQueueFull is returned by BoundedQueue inserts at capacity.
	ErrQueueFull = errors.New("queue full")

	// ErrQueueEmpty is returned by BoundedQueue removals on an empty queue.
	ErrQueueEmpty = errors.New("queue empty")
)
