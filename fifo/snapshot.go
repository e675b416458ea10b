package fifo

// Snapshot is a copy of the controller registers, taken between ticks.
type Snapshot struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	DataWidth int      `json:"data_width"`
	Cycle     uint64   `json:"cycle"`
	ReadPtr   int      `json:"read_ptr"`
	WritePtr  int      `json:"write_ptr"`
	Occupancy int      `json:"occupancy"`
	Empty     bool     `json:"empty"`
	Full      bool     `json:"full"`
	Head      uint64   `json:"head"`
	Inputs    Inputs   `json:"inputs"`
	Contents  []uint64 `json:"contents"`
}

// Snapshot returns the current registers and the stored words from the
// oldest to the newest.
func (c *Controller) Snapshot() Snapshot {
	contents := make([]uint64, 0, c.occupancy)
	for i, ptr := 0, c.readPtr; i < c.occupancy; i++ {
		contents = append(contents, c.slots[ptr])
		ptr = c.advance(ptr)
	}

	return Snapshot{
		Name:      c.name,
		Capacity:  c.capacity,
		DataWidth: c.dataWidth,
		Cycle:     c.cycle,
		ReadPtr:   c.readPtr,
		WritePtr:  c.writePtr,
		Occupancy: c.occupancy,
		Empty:     c.IsEmpty(),
		Full:      c.IsFull(),
		Head:      c.HeadWord(),
		Inputs:    c.inputs,
		Contents:  contents,
	}
}
