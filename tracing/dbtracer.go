package tracing

import (
	"fmt"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/fifosim/datarecording"
	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/sim"
)

// TransitionTableName is the table that the DBTracer writes into.
const TransitionTableName = "fifo_transitions"

// TransitionEntry is a row of the transition table. Words are stored as hex
// strings since SQLite integers cannot hold all 64-bit words.
type TransitionEntry struct {
	ID              string
	Location        string
	Time            float64
	Cycle           int64
	ResetReq        bool
	PushReq         bool
	DropReq         bool
	InputWord       string
	PushAccepted    bool
	DropAccepted    bool
	Overflow        bool
	Underflow       bool
	OccupancyBefore int
	OccupancyAfter  int
	DroppedWord     string
}

// DBTracer is a tracer that stores transitions into a data recorder.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec
	recordIdle         bool
	terminated         bool
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(TransitionTableName, TransitionEntry{})

	t := &DBTracer{
		timeTeller: timeTeller,
		backend:    dataRecorder,
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits the recorded transitions to the given time range. A
// zero bound is open.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// SetRecordIdle makes the tracer also record ticks that did not change the
// controller.
func (t *DBTracer) SetRecordIdle(recordIdle bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recordIdle = recordIdle
}

// RecordTransition stores the transition.
func (t *DBTracer) RecordTransition(where string, trans fifo.Transition) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	if !t.recordIdle && !isInteresting(trans) {
		return
	}

	now := t.timeTeller.CurrentTime()
	if t.startTime > 0 && now < t.startTime {
		return
	}

	if t.endTime > 0 && now > t.endTime {
		return
	}

	entry := TransitionEntry{
		ID:              xid.New().String(),
		Location:        where,
		Time:            float64(now),
		Cycle:           int64(trans.Cycle),
		ResetReq:        trans.Inputs.Reset,
		PushReq:         trans.Inputs.Push,
		DropReq:         trans.Inputs.Drop,
		InputWord:       hexWord(trans.Inputs.Word),
		PushAccepted:    trans.PushAccepted,
		DropAccepted:    trans.DropAccepted,
		Overflow:        trans.Overflow,
		Underflow:       trans.Underflow,
		OccupancyBefore: trans.OccupancyBefore,
		OccupancyAfter:  trans.OccupancyAfter,
	}

	if trans.DropAccepted {
		entry.DroppedWord = hexWord(trans.DroppedWord)
	}

	t.backend.InsertData(TransitionTableName, entry)
}

// Terminate flushes the recorded transitions. Transitions recorded after
// termination are discarded.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.terminated = true
	t.backend.Flush()
}

func hexWord(w uint64) string {
	return fmt.Sprintf("0x%X", w)
}
