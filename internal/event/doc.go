// Package event provides the canonical Series, Event and Session types emitted by
// every calendar source.
//
// The event package owns the wire format (camelCase JSON with a "TBD" sentinel for
// sessions whose time of day is not yet announced) and the per-run Assembler that
// collects events in discovery order while rejecting event URLs already visited.
package event
