package fifo

import "github.com/sarchlab/fifosim/sim"

// HookPosTick is triggered after every tick. The hook item is a Transition.
var HookPosTick = &sim.HookPos{Name: "FIFO Tick"}

// HookPosPush is triggered when a push is accepted. The hook item is the
// word written and the detail is the Transition.
var HookPosPush = &sim.HookPos{Name: "FIFO Push"}

// HookPosDrop is triggered when a drop is accepted. The hook item is the
// word removed from the head and the detail is the Transition.
var HookPosDrop = &sim.HookPos{Name: "FIFO Drop"}

// HookPosReset is triggered on every tick that sees reset asserted.
var HookPosReset = &sim.HookPos{Name: "FIFO Reset"}

// HookPosOverflow is triggered when a push edge is discarded because the
// queue is full.
var HookPosOverflow = &sim.HookPos{Name: "FIFO Overflow"}

// HookPosUnderflow is triggered when a drop edge is discarded because the
// queue is empty.
var HookPosUnderflow = &sim.HookPos{Name: "FIFO Underflow"}

// Inputs are the levels sampled by the controller at a tick boundary.
type Inputs struct {
	Reset bool   `json:"reset"`
	Push  bool   `json:"push"`
	Drop  bool   `json:"drop"`
	Word  uint64 `json:"word"`
}

// Transition describes what a single tick did to the controller.
type Transition struct {
	// Cycle is the index of the tick, starting from 0.
	Cycle uint64

	// Inputs are the levels sampled at this tick.
	Inputs Inputs

	// PushEdge and DropEdge are set when the request rose at this tick.
	// They are never set on a reset tick.
	PushEdge bool
	DropEdge bool

	PushAccepted bool
	DropAccepted bool

	// Overflow and Underflow are set when an edge was seen but the
	// precondition of the operation failed.
	Overflow  bool
	Underflow bool

	OccupancyBefore int
	OccupancyAfter  int

	// PushedWord is the masked word written by an accepted push.
	PushedWord uint64

	// DroppedWord is the head removed by an accepted drop.
	DroppedWord uint64
}

// Changed tells if the tick applied a reset or an accepted operation.
func (t Transition) Changed() bool {
	return t.Inputs.Reset || t.PushAccepted || t.DropAccepted
}
