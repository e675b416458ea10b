package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type recordingHandler struct {
	name    string
	records *[]string
	err     error
}

func (h *recordingHandler) Handle(e Event) error {
	*h.records = append(*h.records, h.name)
	return h.err
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
		records  []string
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
		records = nil
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run events in time order", func() {
		a := &recordingHandler{name: "A", records: &records}
		b := &recordingHandler{name: "B", records: &records}

		engine.Schedule(MakeTickEvent(a, 2))
		engine.Schedule(MakeTickEvent(b, 1))

		Expect(engine.Run()).To(Succeed())
		Expect(records).To(Equal([]string{"B", "A"}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(2)))
	})

	It("should keep the schedule order for same-time events", func() {
		a := &recordingHandler{name: "A", records: &records}
		b := &recordingHandler{name: "B", records: &records}
		c := &recordingHandler{name: "C", records: &records}

		engine.Schedule(MakeTickEvent(a, 1))
		engine.Schedule(MakeTickEvent(b, 1))
		engine.Schedule(MakeTickEvent(c, 1))

		Expect(engine.Run()).To(Succeed())
		Expect(records).To(Equal([]string{"A", "B", "C"}))
	})

	It("should run secondary events after primary events", func() {
		primary := &recordingHandler{name: "P", records: &records}
		secondary := &recordingHandler{name: "S", records: &records}

		secondaryEvt := MakeTickEvent(secondary, 1)
		secondaryEvt.secondary = true

		engine.Schedule(secondaryEvt)
		engine.Schedule(MakeTickEvent(primary, 1))

		Expect(engine.Run()).To(Succeed())
		Expect(records).To(Equal([]string{"P", "S"}))
	})

	It("should stop at a handler error", func() {
		failing := &recordingHandler{
			name:    "F",
			records: &records,
			err:     errors.New("boom"),
		}
		later := &recordingHandler{name: "L", records: &records}

		engine.Schedule(MakeTickEvent(failing, 1))
		engine.Schedule(MakeTickEvent(later, 2))

		err := engine.Run()

		Expect(err).To(MatchError(ContainSubstring("boom")))
		Expect(records).To(Equal([]string{"F"}))
	})

	It("should invoke hooks before and after each event", func() {
		handler := NewMockHandler(mockCtrl)
		hook := NewMockHook(mockCtrl)
		engine.AcceptHook(hook)

		evt := MakeTickEvent(handler, 1)

		gomock.InOrder(
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosBeforeEvent))
				Expect(ctx.Item).To(Equal(evt))
			}),
			handler.EXPECT().Handle(evt).Return(nil),
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosAfterEvent))
			}),
		)

		engine.Schedule(evt)

		Expect(engine.Run()).To(Succeed())
	})

	It("should panic when scheduling an event in the past", func() {
		a := &recordingHandler{name: "A", records: &records}
		engine.Schedule(MakeTickEvent(a, 5))
		Expect(engine.Run()).To(Succeed())

		Expect(func() {
			engine.Schedule(MakeTickEvent(a, 4))
		}).To(Panic())
	})

	It("should pause and continue", func() {
		engine.Pause()
		Expect(engine.IsPaused()).To(BeTrue())

		engine.Continue()
		Expect(engine.IsPaused()).To(BeFalse())
	})

	It("should call simulation end handlers", func() {
		end := &endRecorder{}
		engine.RegisterSimulationEndHandler(end)

		a := &recordingHandler{name: "A", records: &records}
		engine.Schedule(MakeTickEvent(a, 3))
		Expect(engine.Run()).To(Succeed())

		engine.Finished()

		Expect(end.calledAt).To(Equal([]VTimeInSec{3}))
	})
})

type endRecorder struct {
	calledAt []VTimeInSec
}

func (r *endRecorder) Handle(now VTimeInSec) {
	r.calledAt = append(r.calledAt, now)
}
