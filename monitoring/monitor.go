package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/sim"
)

// A Clock is a component that the monitor can ask to tick.
type Clock interface {
	sim.Named
	TickLater()
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	engine      sim.Engine
	controllers []*fifo.Controller
	clocks      []Clock
	portNumber  int
	openBrowser bool

	server *http.Server

	pauseLock    sync.Mutex
	pausedByUser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open the web page once the server starts.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterController registers a controller to be monitored.
func (m *Monitor) RegisterController(c *fifo.Controller) {
	m.controllers = append(m.controllers, c)
}

// RegisterClock registers a clock that can be ticked through the monitor.
func (m *Monitor) RegisterClock(c Clock) {
	m.clocks = append(m.clocks, c)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list of bars in progress.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) newRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/tick/{name}", m.tick)
	r.HandleFunc("/api/list_controllers", m.listControllers)
	r.HandleFunc("/api/controller/{name}", m.controllerDetails)
	r.HandleFunc("/api/field/{json}", m.fieldValue)
	r.HandleFunc("/api/hangdetector/controllers", m.hangDetectorControllers)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server. It returns the URL that
// the server listens on.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber >= 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panic(err)
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url + "/api/list_controllers"); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
		}
	}

	return url, nil
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	m.engine.Pause()
	m.pausedByUser = true

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	m.engine.Continue()
	m.pausedByUser = false

	w.WriteHeader(http.StatusOK)
}

// whilePaused runs f with the engine paused, so that controllers are not
// ticked while they are read. A pause requested through the API is kept.
func (m *Monitor) whilePaused(f func()) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if m.engine == nil || m.pausedByUser {
		f()
		return
	}

	m.engine.Pause()
	defer m.engine.Continue()

	f()
}

func (m *Monitor) snapshot(ctrl *fifo.Controller) fifo.Snapshot {
	var s fifo.Snapshot

	m.whilePaused(func() { s = ctrl.Snapshot() })

	return s
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) run(w http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.engine.Run()
		if err != nil {
			log.Printf("simulation stopped with error: %s", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (m *Monitor) listControllers(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.controllers))
	for _, c := range m.controllers {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) tick(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	for _, c := range m.clocks {
		if c.Name() == name {
			c.TickLater()
			w.WriteHeader(http.StatusOK)

			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, "Clock not found")
}

func (m *Monitor) controllerDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	ctrl := m.findControllerOr404(w, name)
	if ctrl == nil {
		return
	}

	writeJSON(w, m.snapshot(ctrl))
}

type fieldReq struct {
	CtrlName  string `json:"ctrl_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

// fieldValue serializes one field of a controller snapshot, such as
// {"ctrl_name":"Bench.Ctrl","field_name":"Inputs"}.
func (m *Monitor) fieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	ctrl := m.findControllerOr404(w, req.CtrlName)
	if ctrl == nil {
		return
	}

	snapshot := m.snapshot(ctrl)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(1)

	if req.FieldName != "" {
		err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Error: %s", err)

			return
		}
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type controllerLevel struct {
	Controller string `json:"controller"`
	Level      int    `json:"level"`
	Cap        int    `json:"cap"`
}

func (m *Monitor) hangDetectorControllers(
	w http.ResponseWriter,
	r *http.Request,
) {
	sortMethod, limit, offset, err := parseHangDetectorParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	var levels []controllerLevel

	m.whilePaused(func() {
		levels = m.sortAndSelectControllers(sortMethod, limit, offset)
	})

	writeJSON(w, levels)
}

func parseHangDetectorParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, fmt.Errorf(
			"invalid sort method: %s, allowed values are `level` and "+
				"`percent`", sortMethod)
	}

	limit, err = intQueryParam(r, "limit")
	if err != nil {
		return "", 0, 0, err
	}

	offset, err = intQueryParam(r, "offset")
	if err != nil {
		return "", 0, 0, err
	}

	return sortMethod, limit, offset, nil
}

func intQueryParam(r *http.Request, name string) (int, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, err
	}

	if v < 0 {
		return 0, fmt.Errorf("%s cannot be negative", name)
	}

	return v, nil
}

func levelPercent(l controllerLevel) float64 {
	return float64(l.Level) / float64(l.Cap)
}

// sortAndSelectControllers lists the controllers by how full they are. A
// limit of 0 means no limit.
func (m *Monitor) sortAndSelectControllers(
	sortMethod string,
	limit, offset int,
) []controllerLevel {
	levels := make([]controllerLevel, 0, len(m.controllers))
	for _, c := range m.controllers {
		levels = append(levels, controllerLevel{
			Controller: c.Name(),
			Level:      c.Occupancy(),
			Cap:        c.Capacity(),
		})
	}

	sort.SliceStable(levels, func(i, j int) bool {
		li, lj := levels[i], levels[j]
		pi, pj := levelPercent(li), levelPercent(lj)

		if sortMethod == "level" {
			if li.Level != lj.Level {
				return li.Level > lj.Level
			}

			return pi > pj
		}

		if pi != pj {
			return pi > pj
		}

		return li.Level > lj.Level
	})

	if offset > len(levels) {
		offset = len(levels)
	}

	end := len(levels)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return levels[offset:end]
}

func (m *Monitor) findControllerOr404(
	w http.ResponseWriter,
	name string,
) *fifo.Controller {
	for _, c := range m.controllers {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, "Controller not found")

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]ProgressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Status())
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
