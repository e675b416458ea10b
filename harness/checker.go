package harness

// Checker compares what a bench observes with a reference model.
type Checker struct {
	model     *ReferenceModel
	numChecks int
}

// NewChecker creates a checker that compares against the given model.
func NewChecker(model *ReferenceModel) *Checker {
	return &Checker{model: model}
}

// Model returns the reference model used by the checker.
func (c *Checker) Model() *ReferenceModel {
	return c.model
}

// NumChecks returns how many times Check has been called.
func (c *Checker) NumChecks() int {
	return c.numChecks
}

// Check compares the observed status with the model. It returns an error
// describing the first mismatch.
func (c *Checker) Check(s Status) error {
	m := c.model
	c.numChecks++

	if s.Occupancy != m.Len() {
		return mismatch("occupancy mismatch: got %d, expected %d",
			s.Occupancy, m.Len())
	}

	if s.Empty != m.IsEmpty() {
		return mismatch("empty flag mismatch: got %t, expected %t",
			s.Empty, m.IsEmpty())
	}

	if s.Full != m.IsFull() {
		return mismatch("full flag mismatch: got %t, expected %t",
			s.Full, m.IsFull())
	}

	if !m.IsEmpty() && s.Head != m.Front() {
		return mismatch("head mismatch: got 0x%X, expected 0x%X",
			s.Head, m.Front())
	}

	return nil
}
