package fifo

import "errors"

var (
	// ErrInvalidCapacity is returned when a controller is built with a
	// capacity smaller than 1.
	ErrInvalidCapacity = errors.New("fifo: capacity must be at least 1")

	// ErrInvalidDataWidth is returned when a controller is built with a data
	// width outside of 1 to 64 bits.
	ErrInvalidDataWidth = errors.New("fifo: data width must be within 1-64")

	// ErrInvalidName is returned when the controller name does not follow
	// the hierarchical naming convention.
	ErrInvalidName = errors.New("fifo: invalid name")
)
