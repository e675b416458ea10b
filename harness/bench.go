package harness

import (
	"fmt"

	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/sim"
)

// Status is what a test driver can observe from the controller outputs.
type Status struct {
	Occupancy int
	Empty     bool
	Full      bool
	Head      uint64
}

// Bench drives a controller with a clock that runs on a simulation engine.
// Every rising edge of the clock ticks the controller once.
type Bench struct {
	*sim.TickingComponent

	ctrl       *fifo.Controller
	cyclesLeft int
}

// BenchBuilder can build benches.
type BenchBuilder struct {
	engine sim.Engine
	freq   sim.Freq
	ctrl   *fifo.Controller
	fifo   fifo.Builder
}

// MakeBenchBuilder creates a builder for a bench clocked at 100 MHz that
// drives a default controller.
func MakeBenchBuilder() BenchBuilder {
	return BenchBuilder{
		freq: 100 * sim.MHz,
		fifo: fifo.MakeBuilder(),
	}
}

// WithEngine sets the engine that runs the clock. A new serial engine is
// created if not set.
func (b BenchBuilder) WithEngine(engine sim.Engine) BenchBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency.
func (b BenchBuilder) WithFreq(freq sim.Freq) BenchBuilder {
	b.freq = freq
	return b
}

// WithController makes the bench drive an existing controller.
func (b BenchBuilder) WithController(ctrl *fifo.Controller) BenchBuilder {
	b.ctrl = ctrl
	return b
}

// WithCapacity sets the capacity of the controller built with the bench.
func (b BenchBuilder) WithCapacity(capacity int) BenchBuilder {
	b.fifo = b.fifo.WithCapacity(capacity)
	return b
}

// WithDataWidth sets the data width of the controller built with the bench.
func (b BenchBuilder) WithDataWidth(bits int) BenchBuilder {
	b.fifo = b.fifo.WithDataWidth(bits)
	return b
}

// Build creates a bench. The clock component is named after the bench and
// the controller, if built here, is named name + ".Ctrl".
func (b BenchBuilder) Build(name string) (*Bench, error) {
	if err := sim.ValidateName(name); err != nil {
		return nil, err
	}

	if b.freq <= 0 {
		return nil, fmt.Errorf("harness: clock frequency must be positive")
	}

	ctrl := b.ctrl
	if ctrl == nil {
		var err error

		ctrl, err = b.fifo.Build(name + ".Ctrl")
		if err != nil {
			return nil, err
		}
	}

	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	bench := &Bench{ctrl: ctrl}
	bench.TickingComponent = sim.NewTickingComponent(
		name, engine, b.freq, bench)

	return bench, nil
}

// Controller returns the controller driven by the bench.
func (b *Bench) Controller() *fifo.Controller {
	return b.ctrl
}

// Tick applies a rising edge to the controller. It keeps the clock running
// until the requested number of edges has been applied.
func (b *Bench) Tick() bool {
	b.ctrl.Tick()
	b.cyclesLeft--

	return b.cyclesLeft > 0
}

// RunCycles advances the clock by n rising edges.
func (b *Bench) RunCycles(n int) error {
	if n <= 0 {
		return nil
	}

	b.cyclesLeft = n
	b.TickLater()

	return b.Engine.Run()
}

// RisingEdge advances the clock by one rising edge.
func (b *Bench) RisingEdge() error {
	return b.RunCycles(1)
}

// Cycle returns the number of clock edges since time 0.
func (b *Bench) Cycle() uint64 {
	return b.Freq.Cycle(b.CurrentTime())
}

// Status samples the controller outputs.
func (b *Bench) Status() Status {
	return Status{
		Occupancy: b.ctrl.Occupancy(),
		Empty:     b.ctrl.IsEmpty(),
		Full:      b.ctrl.IsFull(),
		Head:      b.ctrl.HeadWord(),
	}
}

// ResetSequence releases reset for one edge, holds it with all commands
// cleared for two edges, releases it and waits one more edge before the
// outputs are trusted.
func (b *Bench) ResetSequence() error {
	b.ctrl.SetReset(false)
	if err := b.RisingEdge(); err != nil {
		return err
	}

	b.ctrl.SetInputs(fifo.Inputs{Reset: true})
	if err := b.RunCycles(2); err != nil {
		return err
	}

	b.ctrl.SetReset(false)

	return b.RisingEdge()
}

// PushWord drives the word for one edge, then holds push for holdCycles
// edges. Only the first edge of the pulse is accepted by the controller.
func (b *Bench) PushWord(word uint64, holdCycles int) error {
	b.ctrl.SetInputWord(word)
	if err := b.RisingEdge(); err != nil {
		return err
	}

	b.ctrl.SetPush(true)
	err := b.RunCycles(holdCycles)
	b.ctrl.SetPush(false)

	return err
}

// DropWord samples the head, then holds drop for holdCycles edges. It
// returns the sampled head, which is the word removed by the drop.
func (b *Bench) DropWord(holdCycles int) (uint64, error) {
	head := b.ctrl.HeadWord()

	b.ctrl.SetDrop(true)
	err := b.RunCycles(holdCycles)
	b.ctrl.SetDrop(false)

	return head, err
}
