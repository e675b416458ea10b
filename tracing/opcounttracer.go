package tracing

import (
	"sync"

	"github.com/sarchlab/fifosim/fifo"
)

// Names of the operations counted by the OpCountTracer.
const (
	OpTick      = "tick"
	OpReset     = "reset"
	OpPush      = "push"
	OpDrop      = "drop"
	OpOverflow  = "overflow"
	OpUnderflow = "underflow"
)

// OpCountTracer counts how many times each operation happened, across all
// the traced controllers.
type OpCountTracer struct {
	lock    sync.Mutex
	opNames []string
	opCount map[string]uint64
}

// NewOpCountTracer creates a new OpCountTracer.
func NewOpCountTracer() *OpCountTracer {
	return &OpCountTracer{
		opCount: make(map[string]uint64),
	}
}

// GetOpNames returns the operation names in the order they were first seen.
func (t *OpCountTracer) GetOpNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.opNames))
	copy(names, t.opNames)

	return names
}

// GetOpCount returns the number of times an operation happened.
func (t *OpCountTracer) GetOpCount(opName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.opCount[opName]
}

// RecordTransition counts the operations applied by one tick.
func (t *OpCountTracer) RecordTransition(_ string, trans fifo.Transition) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.count(OpTick)

	if trans.Inputs.Reset {
		t.count(OpReset)
	}

	if trans.PushAccepted {
		t.count(OpPush)
	}

	if trans.DropAccepted {
		t.count(OpDrop)
	}

	if trans.Overflow {
		t.count(OpOverflow)
	}

	if trans.Underflow {
		t.count(OpUnderflow)
	}
}

func (t *OpCountTracer) count(opName string) {
	if _, ok := t.opCount[opName]; !ok {
		t.opNames = append(t.opNames, opName)
	}

	t.opCount[opName]++
}
