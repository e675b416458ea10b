package tracing

import (
	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/sim"
)

// A Tracer collects the transitions of queue controllers.
type Tracer interface {
	// RecordTransition is called after every tick of the controller named
	// where.
	RecordTransition(where string, trans fifo.Transition)
}

// NamedHookable represents something that has a name and accepts hooks.
type NamedHookable interface {
	sim.Named
	sim.Hookable
}
