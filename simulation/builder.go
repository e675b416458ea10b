package simulation

import (
	"errors"
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/fifosim/datarecording"
	"github.com/sarchlab/fifosim/monitoring"
	"github.com/sarchlab/fifosim/sim"
	"github.com/sarchlab/fifosim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	outputFileName string
	recordIdle     bool
	traceStart     sim.VTimeInSec
	traceEnd       sim.VTimeInSec
	logger         *log.Logger
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in a browser once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// The ".sqlite3" suffix is appended.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithIdleTicksRecorded makes the trace include ticks that did not change
// any controller.
func (b Builder) WithIdleTicksRecorded() Builder {
	b.recordIdle = true
	return b
}

// WithTraceTimeRange only traces transitions within the given time range. A
// zero bound is open.
func (b Builder) WithTraceTimeRange(start, end sim.VTimeInSec) Builder {
	b.traceStart = start
	b.traceEnd = end

	return b
}

// WithLogger makes the simulation log every event and every controller
// transition into the logger.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() error {
	if !b.monitorOn && b.monitorPort != 0 {
		return errors.New(
			"monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		return errors.New(
			"browser cannot be opened when monitoring is disabled")
	}

	if b.traceEnd != 0 && b.traceEnd < b.traceStart {
		return errors.New("trace time range ends before it starts")
	}

	return nil
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:            xid.New().String(),
		ctrlNameIndex: make(map[string]int),
		logger:        b.logger,
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "fifosim_" + s.id
	}

	s.dataRecorder = datarecording.New(outputPath)
	s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder)
	s.execRecorder.Start()

	s.engine = sim.NewSerialEngine()

	s.dbTracer = tracing.NewDBTracer(s.engine, s.dataRecorder)
	s.dbTracer.SetRecordIdle(b.recordIdle)
	s.dbTracer.SetTimeRange(b.traceStart, b.traceEnd)
	s.opCounter = tracing.NewOpCountTracer()
	s.occupancy = tracing.NewOccupancyTracer()

	if b.logger != nil {
		s.engine.AcceptHook(sim.NewEventLogger(b.logger))
	}

	if b.monitorOn {
		if err := b.startMonitor(s); err != nil {
			s.dataRecorder.Close()
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) startMonitor(s *Simulation) error {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	if b.openBrowser {
		s.monitor.WithBrowser()
	}

	s.monitor.RegisterEngine(s.engine)

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	s.monitorURL = url

	return nil
}
