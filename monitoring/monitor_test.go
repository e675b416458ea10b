package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/sim"
)

type sampleClock struct {
	name  string
	ticks int
}

func (c *sampleClock) Name() string {
	return c.name
}

func (c *sampleClock) TickLater() {
	c.ticks++
}

func buildController(name string, capacity, occupancy int) *fifo.Controller {
	ctrl, err := fifo.MakeBuilder().WithCapacity(capacity).Build(name)
	Expect(err).NotTo(HaveOccurred())

	for i := 0; i < occupancy; i++ {
		ctrl.SetInputWord(uint64(i + 1))
		ctrl.SetPush(true)
		ctrl.Tick()
		ctrl.SetPush(false)
		ctrl.Tick()
	}

	return ctrl
}

var _ = Describe("Monitor", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		m        *Monitor
		router   *mux.Router
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterController(buildController("Small", 2, 1))
		m.RegisterController(buildController("Large", 8, 3))
		m.RegisterController(buildController("Full", 1, 1))

		router = m.newRouter()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should ignore privileged port numbers", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(12345)

		Expect(m.portNumber).To(Equal(12345))
	})

	It("should pause and continue the engine", func() {
		engine.EXPECT().Pause()
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))

		engine.EXPECT().Continue()
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
	})

	It("should report the current time", func() {
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(1.5))

		rec := get("/api/now")

		Expect(rec.Body.String()).To(Equal(`{"now":1.5000000000}`))
	})

	It("should list controllers", func() {
		rec := get("/api/list_controllers")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"Small", "Large", "Full"}))
	})

	It("should show a controller snapshot", func() {
		gomock.InOrder(
			engine.EXPECT().Pause(),
			engine.EXPECT().Continue(),
		)

		rec := get("/api/controller/Large")

		var snapshot fifo.Snapshot
		Expect(json.Unmarshal(rec.Body.Bytes(), &snapshot)).To(Succeed())
		Expect(snapshot.Name).To(Equal("Large"))
		Expect(snapshot.Occupancy).To(Equal(3))
		Expect(snapshot.Contents).To(Equal([]uint64{1, 2, 3}))
	})

	It("should keep a pause requested through the API", func() {
		engine.EXPECT().Pause()
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))

		Expect(get("/api/controller/Small").Code).To(Equal(http.StatusOK))
		Expect(get("/api/hangdetector/controllers").Code).
			To(Equal(http.StatusOK))
	})

	It("should return 404 for unknown controllers", func() {
		Expect(get("/api/controller/Missing").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should serialize a field", func() {
		engine.EXPECT().Pause()
		engine.EXPECT().Continue()

		req := url.PathEscape(`{"ctrl_name":"Large","field_name":"Occupancy"}`)

		rec := get("/api/field/" + req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("3"))
	})

	It("should reject malformed field requests", func() {
		Expect(get("/api/field/notjson").Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should tick a registered clock", func() {
		clock := &sampleClock{name: "Bench"}
		m.RegisterClock(clock)

		Expect(get("/api/tick/Bench").Code).To(Equal(http.StatusOK))
		Expect(get("/api/tick/Other").Code).To(Equal(http.StatusNotFound))
		Expect(clock.ticks).To(Equal(1))
	})

	Context("hang detector", func() {
		BeforeEach(func() {
			engine.EXPECT().Pause().AnyTimes()
			engine.EXPECT().Continue().AnyTimes()
		})

		list := func(query string) []controllerLevel {
			rec := get("/api/hangdetector/controllers" + query)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var levels []controllerLevel
			Expect(json.Unmarshal(rec.Body.Bytes(), &levels)).To(Succeed())

			return levels
		}

		names := func(levels []controllerLevel) []string {
			n := make([]string, 0, len(levels))
			for _, l := range levels {
				n = append(n, l.Controller)
			}

			return n
		}

		It("should sort by percent by default", func() {
			Expect(names(list(""))).To(Equal(
				[]string{"Full", "Small", "Large"}))
		})

		It("should sort by level", func() {
			Expect(names(list("?sort=level"))).To(Equal(
				[]string{"Large", "Full", "Small"}))
		})

		It("should apply limit and offset", func() {
			Expect(names(list("?sort=level&limit=1&offset=1"))).To(Equal(
				[]string{"Full"}))
		})

		It("should clamp the offset", func() {
			Expect(list("?offset=10")).To(BeEmpty())
		})

		It("should reject invalid parameters", func() {
			Expect(get("/api/hangdetector/controllers?sort=size").Code).
				To(Equal(http.StatusBadRequest))
			Expect(get("/api/hangdetector/controllers?limit=x").Code).
				To(Equal(http.StatusBadRequest))
		})
	})

	Context("progress bars", func() {
		It("should list bars until completed", func() {
			bar := m.CreateProgressBar("Cycles", 10)
			bar.IncrementInProgress(3)
			bar.MoveInProgressToFinished(2)

			var bars []ProgressBarStatus
			rec := get("/api/progress")
			Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
			Expect(bars).To(HaveLen(1))
			Expect(bars[0].Name).To(Equal("Cycles"))
			Expect(bars[0].Finished).To(Equal(uint64(2)))
			Expect(bars[0].InProgress).To(Equal(uint64(1)))

			m.CompleteProgressBar(bar)

			rec = get("/api/progress")
			Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
			Expect(bars).To(BeEmpty())
		})
	})

	It("should report resource usage", func() {
		rec := get("/api/resource")

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})
})
