// Package sim is the discrete-event engine behind clinic-sim.
//
// # Reading Guide
//
// Start with these files:
//   - scheduler.go: the future-event list, virtual clock and Run loop
//   - event.go: the closed set of event kinds the network dispatches on
//   - network.go: the clinic state machine (arrival, triage, consultation)
//
// # Supporting pieces
//
//   - queue.go: BoundedQueue with time-weighted average length
//   - variate.go, rng.go: distribution samplers over per-subsystem RNG streams
//   - routing.go: office selection for triaged patients
//   - stats.go, snapshot.go: counters, tallies and the end-of-run Snapshot
//   - hook.go: the Hook interface consumed by sim/trace
//
// Patient identifiers come from sim/idgen.
package sim
