package harness

// ReferenceModel is an unbounded software queue that tracks what a correct
// controller should hold.
type ReferenceModel struct {
	capacity int
	words    []uint64
}

// NewReferenceModel creates a model of a queue with the given capacity.
func NewReferenceModel(capacity int) *ReferenceModel {
	return &ReferenceModel{capacity: capacity}
}

// Len returns the number of words in the model.
func (m *ReferenceModel) Len() int {
	return len(m.words)
}

// IsEmpty tells if the model holds no word.
func (m *ReferenceModel) IsEmpty() bool {
	return len(m.words) == 0
}

// IsFull tells if the model holds as many words as the capacity.
func (m *ReferenceModel) IsFull() bool {
	return len(m.words) == m.capacity
}

// Front returns the oldest word, or 0 if the model is empty.
func (m *ReferenceModel) Front() uint64 {
	if m.IsEmpty() {
		return 0
	}

	return m.words[0]
}

// Push appends a word. It returns false if the model is full.
func (m *ReferenceModel) Push(word uint64) bool {
	if m.IsFull() {
		return false
	}

	m.words = append(m.words, word)

	return true
}

// Pop removes the oldest word. It returns false if the model is empty.
func (m *ReferenceModel) Pop() (uint64, bool) {
	if m.IsEmpty() {
		return 0, false
	}

	w := m.words[0]
	m.words = m.words[1:]

	return w, true
}

// Reset empties the model.
func (m *ReferenceModel) Reset() {
	m.words = nil
}
