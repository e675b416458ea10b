package fifo

import (
	"fmt"

	"github.com/sarchlab/fifosim/sim"
)

// Builder can build bounded queue controllers.
type Builder struct {
	capacity  int
	dataWidth int
}

// MakeBuilder creates a builder with default parameters: 16 slots of 32-bit
// words.
func MakeBuilder() Builder {
	return Builder{
		capacity:  16,
		dataWidth: 32,
	}
}

// WithCapacity sets the number of slots of the queue.
func (b Builder) WithCapacity(capacity int) Builder {
	b.capacity = capacity
	return b
}

// WithDataWidth sets the number of bits kept from each input word.
func (b Builder) WithDataWidth(bits int) Builder {
	b.dataWidth = bits
	return b
}

func (b Builder) parametersMustBeValid(name string) error {
	if err := sim.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	if b.capacity < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidCapacity, b.capacity)
	}

	if b.dataWidth < 1 || b.dataWidth > 64 {
		return fmt.Errorf("%w, got %d", ErrInvalidDataWidth, b.dataWidth)
	}

	return nil
}

// Build creates a controller in the reset state. It refuses to create a
// controller from invalid parameters.
func (b Builder) Build(name string) (*Controller, error) {
	if err := b.parametersMustBeValid(name); err != nil {
		return nil, err
	}

	c := &Controller{
		name:      name,
		capacity:  b.capacity,
		dataWidth: b.dataWidth,
		mask:      wordMask(b.dataWidth),
		slots:     make([]uint64, b.capacity),
	}

	return c, nil
}

func wordMask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << bits) - 1
}
