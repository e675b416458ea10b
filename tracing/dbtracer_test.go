package tracing

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/fifosim/datarecording"
	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/sim"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		recorder   *MockDataRecorder
		tracer     *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		recorder = NewMockDataRecorder(mockCtrl)

		recorder.EXPECT().
			CreateTable(TransitionTableName, TransitionEntry{})
		tracer = NewDBTracer(timeTeller, recorder)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record an accepted drop", func() {
		var entry TransitionEntry

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2e-8))
		recorder.EXPECT().
			InsertData(TransitionTableName, gomock.Any()).
			Do(func(_ string, e any) { entry = e.(TransitionEntry) })

		tracer.RecordTransition("Queue", fifo.Transition{
			Cycle:           2,
			Inputs:          fifo.Inputs{Drop: true, Word: 0xFF},
			DropEdge:        true,
			DropAccepted:    true,
			OccupancyBefore: 1,
			OccupancyAfter:  0,
			DroppedWord:     0xDEADBEEF,
		})

		Expect(entry.ID).NotTo(BeEmpty())
		Expect(entry.Location).To(Equal("Queue"))
		Expect(entry.Time).To(BeNumerically("~", 2e-8))
		Expect(entry.Cycle).To(Equal(int64(2)))
		Expect(entry.DropReq).To(BeTrue())
		Expect(entry.DropAccepted).To(BeTrue())
		Expect(entry.InputWord).To(Equal("0xFF"))
		Expect(entry.DroppedWord).To(Equal("0xDEADBEEF"))
		Expect(entry.OccupancyBefore).To(Equal(1))
		Expect(entry.OccupancyAfter).To(Equal(0))
	})

	It("should record overflows", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		recorder.EXPECT().InsertData(TransitionTableName, gomock.Any())

		tracer.RecordTransition("Queue", fifo.Transition{Overflow: true})
	})

	It("should skip idle ticks", func() {
		tracer.RecordTransition("Queue", fifo.Transition{})
	})

	It("should record idle ticks if asked", func() {
		tracer.SetRecordIdle(true)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		recorder.EXPECT().InsertData(TransitionTableName, gomock.Any())

		tracer.RecordTransition("Queue", fifo.Transition{})
	})

	It("should skip transitions outside of the time range", func() {
		tracer.SetTimeRange(2, 3)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		tracer.RecordTransition("Queue", fifo.Transition{PushAccepted: true})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		tracer.RecordTransition("Queue", fifo.Transition{PushAccepted: true})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2.5))
		recorder.EXPECT().InsertData(TransitionTableName, gomock.Any())
		tracer.RecordTransition("Queue", fifo.Transition{PushAccepted: true})
	})

	It("should flush once on terminate", func() {
		recorder.EXPECT().Flush().Times(1)

		tracer.Terminate()
		tracer.Terminate()
		tracer.RecordTransition("Queue", fifo.Transition{PushAccepted: true})
	})
})

var _ = Describe("DBTracer with a SQLite recorder", func() {
	It("should write transitions that can be read back", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		recorder := datarecording.New(path)
		tracer := NewDBTracer(sim.NewSerialEngine(), recorder)

		tracer.RecordTransition("Queue", fifo.Transition{
			Cycle:           3,
			Inputs:          fifo.Inputs{Drop: true},
			DropAccepted:    true,
			DroppedWord:     0xFFFFFFFFFFFFFFFF,
			OccupancyBefore: 1,
		})
		tracer.Terminate()
		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(TransitionTableName, TransitionEntry{})
		results, total, err := reader.Query(context.Background(),
			TransitionTableName, datarecording.QueryParams{
				Where: "DropReq = ?",
				Args:  []any{true},
			})

		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(1))

		entry := results[0].(*TransitionEntry)
		Expect(entry.Location).To(Equal("Queue"))
		Expect(entry.Cycle).To(Equal(int64(3)))
		Expect(entry.DroppedWord).To(Equal("0xFFFFFFFFFFFFFFFF"))
	})
})
