package simulation

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fifosim/datarecording"
	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/tracing"
)

func buildController(name string) *fifo.Controller {
	ctrl, err := fifo.MakeBuilder().WithCapacity(2).Build(name)
	Expect(err).NotTo(HaveOccurred())

	return ctrl
}

var _ = Describe("Simulation", func() {
	var (
		outputPath string
		simulation *Simulation
	)

	BeforeEach(func() {
		var err error

		outputPath = filepath.Join(GinkgoT().TempDir(), "trace")
		simulation, err = MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(outputPath).
			Build()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(simulation.Terminate()).To(Succeed())
	})

	It("should register a controller", func() {
		ctrl := buildController("Queue")

		simulation.RegisterController(ctrl)

		Expect(simulation.GetControllerByName("Queue")).To(BeIdenticalTo(ctrl))
		Expect(simulation.GetControllerByName("Other")).To(BeNil())
		Expect(simulation.Controllers()).To(HaveLen(1))
		Expect(ctrl.NumHooks()).To(Equal(3))
	})

	It("should panic on duplicated names", func() {
		simulation.RegisterController(buildController("Queue"))

		Expect(func() {
			simulation.RegisterController(buildController("Queue"))
		}).To(Panic())
	})

	It("should count the operations of registered controllers", func() {
		ctrl := buildController("Queue")
		simulation.RegisterController(ctrl)

		ctrl.SetPush(true)
		ctrl.Tick()

		Expect(simulation.GetOpCounter().GetOpCount(tracing.OpPush)).
			To(Equal(uint64(1)))
	})

	It("should collect the occupancy of registered controllers", func() {
		ctrl := buildController("Queue")
		simulation.RegisterController(ctrl)

		for i := 0; i < 3; i++ {
			ctrl.SetPush(true)
			ctrl.Tick()
			ctrl.SetPush(false)
			ctrl.Tick()
		}

		occupancy := simulation.GetOccupancyTracer()
		Expect(occupancy.Ticks()).To(Equal(uint64(6)))
		Expect(occupancy.MaxOccupancy()).To(Equal(2))
		Expect(occupancy.FullTicks()).To(Equal(uint64(4)))
	})

	It("should record transitions into the output file", func() {
		ctrl := buildController("Queue")
		simulation.RegisterController(ctrl)

		ctrl.SetInputWord(0xAB)
		ctrl.SetPush(true)
		ctrl.Tick()
		ctrl.SetPush(false)
		ctrl.Tick()

		Expect(simulation.Terminate()).To(Succeed())

		reader, err := datarecording.NewReader(outputPath + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(tracing.TransitionTableName, tracing.TransitionEntry{})
		results, total, err := reader.Query(
			context.Background(), tracing.TransitionTableName,
			datarecording.QueryParams{})

		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(1))

		entry := results[0].(*tracing.TransitionEntry)
		Expect(entry.Location).To(Equal("Queue"))
		Expect(entry.PushAccepted).To(BeTrue())
		Expect(entry.InputWord).To(Equal("0xAB"))
	})

	It("should terminate only once", func() {
		Expect(simulation.Terminate()).To(Succeed())
		Expect(simulation.Terminate()).To(Succeed())
	})
})

var _ = Describe("Builder", func() {
	It("should reject a trace time range that ends before it starts", func() {
		_, err := MakeBuilder().
			WithoutMonitoring().
			WithTraceTimeRange(2, 1).
			Build()

		Expect(err).To(HaveOccurred())
	})

	It("should only trace within the time range", func() {
		outputPath := filepath.Join(GinkgoT().TempDir(), "trace")
		s, err := MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(outputPath).
			WithTraceTimeRange(1, 0).
			Build()
		Expect(err).NotTo(HaveOccurred())

		ctrl := buildController("Queue")
		s.RegisterController(ctrl)
		ctrl.SetPush(true)
		ctrl.Tick()

		Expect(s.Terminate()).To(Succeed())

		reader, err := datarecording.NewReader(outputPath + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(tracing.TransitionTableName, tracing.TransitionEntry{})
		_, total, err := reader.Query(
			context.Background(), tracing.TransitionTableName,
			datarecording.QueryParams{})

		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(0))
		Expect(s.GetOpCounter().GetOpCount(tracing.OpPush)).
			To(Equal(uint64(1)))
	})

	It("should reject a monitor port without monitoring", func() {
		_, err := MakeBuilder().
			WithoutMonitoring().
			WithMonitorPort(8080).
			Build()

		Expect(err).To(HaveOccurred())
	})

	It("should reject a browser without monitoring", func() {
		_, err := MakeBuilder().WithoutMonitoring().WithBrowser().Build()

		Expect(err).To(HaveOccurred())
	})

	It("should attach loggers", func() {
		buf := new(bytes.Buffer)
		outputPath := filepath.Join(GinkgoT().TempDir(), "trace")

		s, err := MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(outputPath).
			WithLogger(log.New(buf, "", 0)).
			Build()
		Expect(err).NotTo(HaveOccurred())

		ctrl := buildController("Queue")
		s.RegisterController(ctrl)
		ctrl.SetPush(true)
		ctrl.Tick()

		Expect(buf.String()).To(ContainSubstring("Queue"))
		Expect(s.Terminate()).To(Succeed())
	})

	It("should start a monitor", func() {
		outputPath := filepath.Join(GinkgoT().TempDir(), "trace")

		s, err := MakeBuilder().WithOutputFileName(outputPath).Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(s.GetMonitor()).NotTo(BeNil())
		Expect(s.MonitorURL()).To(HavePrefix("http://localhost:"))
		Expect(s.Terminate()).To(Succeed())

		_, err = os.Stat(outputPath + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
	})
})
