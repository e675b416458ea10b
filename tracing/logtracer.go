package tracing

import (
	"log"

	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/sim"
)

// LogTracer writes one line per transition into a logger. Idle ticks are
// skipped unless LogIdle is set.
type LogTracer struct {
	*log.Logger

	timeTeller sim.TimeTeller
	LogIdle    bool
}

// NewLogTracer creates a LogTracer that writes into the given logger.
func NewLogTracer(logger *log.Logger, timeTeller sim.TimeTeller) *LogTracer {
	return &LogTracer{
		Logger:     logger,
		timeTeller: timeTeller,
	}
}

// RecordTransition prints the transition.
func (t *LogTracer) RecordTransition(where string, trans fifo.Transition) {
	if !t.LogIdle && !isInteresting(trans) {
		return
	}

	t.Printf("%.10f, %s, cycle %d, %s, occupancy %d -> %d",
		t.timeTeller.CurrentTime(), where, trans.Cycle,
		describeOps(trans), trans.OccupancyBefore, trans.OccupancyAfter)
}

func isInteresting(trans fifo.Transition) bool {
	return trans.Changed() || trans.Overflow || trans.Underflow
}

func describeOps(trans fifo.Transition) string {
	ops := ""

	add := func(s string) {
		if ops != "" {
			ops += " "
		}

		ops += s
	}

	if trans.Inputs.Reset {
		add(OpReset)
	}

	if trans.DropAccepted {
		add(OpDrop)
	}

	if trans.PushAccepted {
		add(OpPush)
	}

	if trans.Overflow {
		add(OpOverflow)
	}

	if trans.Underflow {
		add(OpUnderflow)
	}

	if ops == "" {
		ops = "idle"
	}

	return ops
}
