package fifo

import (
	"github.com/sarchlab/fifosim/sim"
)

// Controller is a bounded first-in-first-out queue that advances once per
// tick.
//
// The occupancy counter is the only source of the full and empty flags. The
// read and write pointers are equal both when the queue is empty and when it
// is full.
type Controller struct {
	sim.HookableBase

	name      string
	capacity  int
	dataWidth int
	mask      uint64

	slots     []uint64
	readPtr   int
	writePtr  int
	occupancy int

	// Request levels sampled at the previous tick, used for edge detection.
	prevPush bool
	prevDrop bool

	cycle  uint64
	inputs Inputs
}

// Name returns the name of the controller.
func (c *Controller) Name() string {
	return c.name
}

// SetReset drives the reset level seen by the next tick.
func (c *Controller) SetReset(v bool) {
	c.inputs.Reset = v
}

// SetPush drives the push request level seen by the next tick.
func (c *Controller) SetPush(v bool) {
	c.inputs.Push = v
}

// SetDrop drives the drop request level seen by the next tick.
func (c *Controller) SetDrop(v bool) {
	c.inputs.Drop = v
}

// SetInputWord drives the word written by the next accepted push.
func (c *Controller) SetInputWord(w uint64) {
	c.inputs.Word = w
}

// SetInputs drives all the inputs at once.
func (c *Controller) SetInputs(in Inputs) {
	c.inputs = in
}

// Inputs returns the levels currently driven on the inputs.
func (c *Controller) Inputs() Inputs {
	return c.inputs
}

// Tick samples the inputs and applies one clock edge. It returns true if the
// tick applied a reset or accepted an operation.
func (c *Controller) Tick() bool {
	in := c.inputs

	trans := Transition{
		Cycle:           c.cycle,
		Inputs:          in,
		OccupancyBefore: c.occupancy,
	}

	pushEdge := in.Push && !c.prevPush
	dropEdge := in.Drop && !c.prevDrop

	// The history follows the request levels even while reset is held, so a
	// request that stays high across reset release does not fire.
	c.prevPush = in.Push
	c.prevDrop = in.Drop
	c.cycle++

	if in.Reset {
		c.clearRegisters()
	} else {
		c.applyEdges(&trans, pushEdge, dropEdge)
	}

	trans.OccupancyAfter = c.occupancy

	if c.NumHooks() > 0 {
		c.invokeTransitionHooks(trans)
	}

	return trans.Changed()
}

func (c *Controller) clearRegisters() {
	c.readPtr = 0
	c.writePtr = 0
	c.occupancy = 0
}

// applyEdges evaluates both preconditions against the occupancy before the
// tick, so a drop from a full queue never makes room for a push in the same
// tick.
func (c *Controller) applyEdges(trans *Transition, pushEdge, dropEdge bool) {
	trans.PushEdge = pushEdge
	trans.DropEdge = dropEdge

	canPush := c.occupancy < c.capacity
	canDrop := c.occupancy > 0

	if dropEdge {
		if canDrop {
			trans.DropAccepted = true
			trans.DroppedWord = c.slots[c.readPtr]
			c.readPtr = c.advance(c.readPtr)
			c.occupancy--
		} else {
			trans.Underflow = true
		}
	}

	if pushEdge {
		if canPush {
			word := trans.Inputs.Word & c.mask
			trans.PushAccepted = true
			trans.PushedWord = word
			c.slots[c.writePtr] = word
			c.writePtr = c.advance(c.writePtr)
			c.occupancy++
		} else {
			trans.Overflow = true
		}
	}
}

func (c *Controller) advance(ptr int) int {
	ptr++
	if ptr == c.capacity {
		ptr = 0
	}

	return ptr
}

func (c *Controller) invokeTransitionHooks(trans Transition) {
	if trans.Inputs.Reset {
		c.invoke(HookPosReset, trans, nil)
	}

	if trans.DropAccepted {
		c.invoke(HookPosDrop, trans.DroppedWord, trans)
	}

	if trans.PushAccepted {
		c.invoke(HookPosPush, trans.PushedWord, trans)
	}

	if trans.Overflow {
		c.invoke(HookPosOverflow, trans, nil)
	}

	if trans.Underflow {
		c.invoke(HookPosUnderflow, trans, nil)
	}

	c.invoke(HookPosTick, trans, nil)
}

func (c *Controller) invoke(pos *sim.HookPos, item, detail interface{}) {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}

// HeadWord returns the word at the read pointer. The value is meaningless
// when the queue is empty.
func (c *Controller) HeadWord() uint64 {
	return c.slots[c.readPtr]
}

// Head returns the word at the read pointer and whether it holds valid data.
func (c *Controller) Head() (uint64, bool) {
	return c.slots[c.readPtr], c.occupancy > 0
}

// Occupancy returns the number of words stored.
func (c *Controller) Occupancy() int {
	return c.occupancy
}

// IsEmpty tells if the queue holds no word.
func (c *Controller) IsEmpty() bool {
	return c.occupancy == 0
}

// IsFull tells if the queue holds as many words as its capacity.
func (c *Controller) IsFull() bool {
	return c.occupancy == c.capacity
}

// Capacity returns the number of slots.
func (c *Controller) Capacity() int {
	return c.capacity
}

// DataWidth returns the number of bits kept from each word.
func (c *Controller) DataWidth() int {
	return c.dataWidth
}

// Cycle returns the number of ticks applied since the controller was built.
func (c *Controller) Cycle() uint64 {
	return c.cycle
}
