package harness

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fifosim/fifo"
)

func newBench(capacity int) *Bench {
	b, err := MakeBenchBuilder().WithCapacity(capacity).Build("Bench")
	Expect(err).NotTo(HaveOccurred())

	return b
}

var _ = Describe("ReferenceModel", func() {
	It("should behave as a bounded queue", func() {
		m := NewReferenceModel(2)

		Expect(m.IsEmpty()).To(BeTrue())
		Expect(m.Push(1)).To(BeTrue())
		Expect(m.Push(2)).To(BeTrue())
		Expect(m.IsFull()).To(BeTrue())
		Expect(m.Push(3)).To(BeFalse())
		Expect(m.Front()).To(Equal(uint64(1)))

		w, ok := m.Pop()
		Expect(ok).To(BeTrue())
		Expect(w).To(Equal(uint64(1)))

		m.Reset()
		_, ok = m.Pop()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Checker", func() {
	var (
		model   *ReferenceModel
		checker *Checker
	)

	BeforeEach(func() {
		model = NewReferenceModel(2)
		checker = NewChecker(model)
	})

	It("should accept a matching status", func() {
		model.Push(7)

		err := checker.Check(Status{Occupancy: 1, Head: 7})

		Expect(err).NotTo(HaveOccurred())
		Expect(checker.NumChecks()).To(Equal(1))
	})

	It("should report an occupancy mismatch", func() {
		err := checker.Check(Status{Occupancy: 1})

		Expect(err).To(MatchError(ErrMismatch))
		Expect(err.Error()).To(ContainSubstring("occupancy"))
	})

	It("should report a flag mismatch", func() {
		err := checker.Check(Status{Occupancy: 0, Empty: false})

		Expect(err).To(MatchError(ErrMismatch))
		Expect(err.Error()).To(ContainSubstring("empty"))
	})

	It("should report a full flag mismatch", func() {
		model.Push(1)
		model.Push(2)

		err := checker.Check(Status{Occupancy: 2, Head: 1})

		Expect(err).To(MatchError(ErrMismatch))
		Expect(err.Error()).To(ContainSubstring("full"))
	})

	It("should report a head mismatch", func() {
		model.Push(1)

		err := checker.Check(Status{Occupancy: 1, Head: 2})

		Expect(err).To(MatchError(ErrMismatch))
		Expect(err.Error()).To(ContainSubstring("head"))
	})
})

var _ = Describe("Scenarios", func() {
	It("should pass reset and flags", func() {
		Expect(RunResetAndFlags(newBench(16))).To(Succeed())
	})

	It("should pass a single push and pop on a one-slot queue", func() {
		Expect(RunSinglePushPop(newBench(1))).To(Succeed())
	})

	DescribeTable("fill and full",
		func(capacity int) {
			Expect(RunFillAndFull(newBench(capacity))).To(Succeed())
		},
		Entry("one slot", 1),
		Entry("four slots", 4),
		Entry("sixteen slots", 16),
	)

	DescribeTable("randomized",
		func(capacity int, seed int64) {
			b := newBench(capacity)
			rng := rand.New(rand.NewSource(seed))

			Expect(RunRandomized(b, 500, rng)).To(Succeed())
		},
		Entry("one slot", 1, int64(1)),
		Entry("four slots", 4, int64(2)),
		Entry("sixteen slots", 16, int64(3)),
	)

	It("should pass edge sensitivity", func() {
		Expect(RunEdgeSensitivity(newBench(16))).To(Succeed())
	})

	It("should pass all scenarios", func() {
		err := RunAll(Scenarios(200, 42), func(name string) (*Bench, error) {
			return MakeBenchBuilder().WithCapacity(4).Build(name)
		})

		Expect(err).NotTo(HaveOccurred())
	})

	It("should aggregate failures", func() {
		failing := []Scenario{
			{Name: "Good", Run: RunResetAndFlags},
			{
				Name: "Bad",
				Run: func(b *Bench) error {
					return mismatch("always")
				},
			},
		}

		err := RunAll(failing, func(name string) (*Bench, error) {
			return MakeBenchBuilder().Build(name)
		})

		Expect(err).To(MatchError(ErrMismatch))
		Expect(err.Error()).To(ContainSubstring("Bad"))
		Expect(err.Error()).NotTo(ContainSubstring("Good"))
	})

	It("should catch a divergence from the model", func() {
		b := newBench(4)
		Expect(b.ResetSequence()).To(Succeed())

		checker := NewChecker(NewReferenceModel(4))
		b.Controller().SetInputs(fifo.Inputs{Push: true, Word: 5})
		Expect(b.RisingEdge()).To(Succeed())

		Expect(checker.Check(b.Status())).To(MatchError(ErrMismatch))
	})
})
