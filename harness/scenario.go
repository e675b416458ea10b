package harness

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrMismatch is wrapped by every error reporting that the controller
// disagrees with the expected behavior.
var ErrMismatch = errors.New("harness: mismatch")

func mismatch(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMismatch, fmt.Sprintf(format, args...))
}

// A Scenario is a named verification procedure that runs on a fresh bench.
type Scenario struct {
	Name string
	Run  func(b *Bench) error
}

// Scenarios returns the standard verification procedures. The randomized
// scenario runs the given number of cycles with the given seed.
func Scenarios(cycles int, seed int64) []Scenario {
	return []Scenario{
		{Name: "ResetAndFlags", Run: RunResetAndFlags},
		{Name: "SinglePushPop", Run: RunSinglePushPop},
		{Name: "FillAndFull", Run: RunFillAndFull},
		{
			Name: "Randomized",
			Run: func(b *Bench) error {
				return RunRandomized(b, cycles, rand.New(rand.NewSource(seed)))
			},
		},
		{Name: "EdgeSensitivity", Run: RunEdgeSensitivity},
	}
}

// RunResetAndFlags checks the outputs right after the reset sequence.
func RunResetAndFlags(b *Bench) error {
	if err := b.ResetSequence(); err != nil {
		return err
	}

	s := b.Status()
	if !s.Empty {
		return mismatch("queue should be empty after reset")
	}

	if s.Full {
		return mismatch("queue should not be full after reset")
	}

	if s.Occupancy != 0 {
		return mismatch("occupancy must be 0 after reset, got %d", s.Occupancy)
	}

	return nil
}

// RunSinglePushPop pushes one word and drops it back.
func RunSinglePushPop(b *Bench) error {
	const word = 0xDEADBEEF

	if err := b.ResetSequence(); err != nil {
		return err
	}

	if err := b.PushWord(word, 1); err != nil {
		return err
	}

	s := b.Status()
	if s.Empty || s.Occupancy != 1 {
		return mismatch("expected one word after a push, got %d", s.Occupancy)
	}

	if s.Head != word {
		return mismatch("head mismatch: got 0x%X, expected 0x%X", s.Head, word)
	}

	if err := b.RisingEdge(); err != nil {
		return err
	}

	got, err := b.DropWord(1)
	if err != nil {
		return err
	}

	if got != word {
		return mismatch("drop mismatch: got 0x%X, expected 0x%X", got, word)
	}

	s = b.Status()
	if !s.Empty || s.Occupancy != 0 {
		return mismatch("queue should be empty after dropping the only word")
	}

	return nil
}

// RunFillAndFull fills the queue, checks that an extra push is ignored and
// drains it in order.
func RunFillAndFull(b *Bench) error {
	depth := b.Controller().Capacity()

	if err := b.ResetSequence(); err != nil {
		return err
	}

	for i := 0; i < depth; i++ {
		if err := pushThenSettle(b, uint64(i)); err != nil {
			return err
		}
	}

	s := b.Status()
	if !s.Full || s.Empty || s.Occupancy != depth {
		return mismatch("expected a full queue of %d words, got %d",
			depth, s.Occupancy)
	}

	if err := b.RisingEdge(); err != nil {
		return err
	}

	if err := b.PushWord(0x12345678, 1); err != nil {
		return err
	}

	if occupancy := b.Status().Occupancy; occupancy != depth {
		return mismatch("occupancy grew beyond capacity: %d", occupancy)
	}

	if err := b.RisingEdge(); err != nil {
		return err
	}

	for i := 0; i < depth; i++ {
		got, err := dropThenSettle(b)
		if err != nil {
			return err
		}

		if got != uint64(i) {
			return mismatch("order error at index %d: got %d", i, got)
		}
	}

	s = b.Status()
	if !s.Empty || s.Occupancy != 0 {
		return mismatch("queue should be empty after draining")
	}

	return nil
}

// RunRandomized issues legal random operations for the given number of
// cycles and compares the controller with a reference model after every
// operation.
func RunRandomized(b *Bench, cycles int, rng *rand.Rand) error {
	ctrl := b.Controller()
	model := NewReferenceModel(ctrl.Capacity())
	checker := NewChecker(model)
	mask := wordMask(ctrl.DataWidth())

	if err := b.ResetSequence(); err != nil {
		return err
	}

	for cycle := 0; cycle < cycles; cycle++ {
		if err := checker.Check(b.Status()); err != nil {
			return fmt.Errorf("[cycle %d] %w", cycle, err)
		}

		doPush, doDrop := chooseOperation(model, rng)

		switch {
		case doPush:
			word := rng.Uint64() & mask
			model.Push(word)

			if err := b.PushWord(word, 1); err != nil {
				return err
			}
		case doDrop:
			expected, _ := model.Pop()

			got, err := b.DropWord(1)
			if err != nil {
				return err
			}

			if got != expected {
				return mismatch("[cycle %d] drop mismatch: got 0x%X, "+
					"expected 0x%X", cycle, got, expected)
			}
		}

		if err := b.RisingEdge(); err != nil {
			return err
		}
	}

	if err := checker.Check(b.Status()); err != nil {
		return fmt.Errorf("at the end: %w", err)
	}

	return nil
}

func chooseOperation(model *ReferenceModel, rng *rand.Rand) (push, drop bool) {
	switch {
	case model.IsEmpty():
		return true, false
	case model.IsFull():
		return false, true
	}

	switch rng.Intn(3) {
	case 0:
		return true, false
	case 1:
		return false, true
	default:
		return false, false
	}
}

// RunEdgeSensitivity holds push and drop for several cycles and checks that
// each assertion window is accepted once.
func RunEdgeSensitivity(b *Bench) error {
	const (
		word1 = 0xBEEFBABE
		word2 = 0xFEEDFACE
	)

	if err := b.ResetSequence(); err != nil {
		return err
	}

	if err := b.PushWord(word1, 3); err != nil {
		return err
	}

	if occupancy := b.Status().Occupancy; occupancy != 1 {
		return mismatch("occupancy should be 1 after the first push edge, "+
			"got %d", occupancy)
	}

	if err := b.RisingEdge(); err != nil {
		return err
	}

	if err := b.PushWord(word2, 9); err != nil {
		return err
	}

	if occupancy := b.Status().Occupancy; occupancy != 2 {
		return mismatch("occupancy should be 2 after the second push edge, "+
			"got %d", occupancy)
	}

	if err := b.RisingEdge(); err != nil {
		return err
	}

	got, err := b.DropWord(5)
	if err != nil {
		return err
	}

	if got != word1 {
		return mismatch("first drop: got 0x%X, expected 0x%X", got, word1)
	}

	if occupancy := b.Status().Occupancy; occupancy != 1 {
		return mismatch("occupancy should be 1 after the first drop edge, "+
			"got %d", occupancy)
	}

	if err := b.RisingEdge(); err != nil {
		return err
	}

	got, err = b.DropWord(2)
	if err != nil {
		return err
	}

	if got != word2 {
		return mismatch("second drop: got 0x%X, expected 0x%X", got, word2)
	}

	if !b.Status().Empty {
		return mismatch("queue should be empty after both drops")
	}

	return nil
}

// RunAll runs every scenario on its own bench built by newBench and joins
// the failures.
func RunAll(
	scenarios []Scenario,
	newBench func(name string) (*Bench, error),
) error {
	var errs []error

	for _, s := range scenarios {
		b, err := newBench(s.Name)
		if err != nil {
			return fmt.Errorf("building bench for %s: %w", s.Name, err)
		}

		if err := s.Run(b); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}

	return errors.Join(errs...)
}

func pushThenSettle(b *Bench, word uint64) error {
	if err := b.PushWord(word, 1); err != nil {
		return err
	}

	return b.RisingEdge()
}

func dropThenSettle(b *Bench) (uint64, error) {
	got, err := b.DropWord(1)
	if err != nil {
		return 0, err
	}

	return got, b.RisingEdge()
}

func wordMask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << bits) - 1
}
