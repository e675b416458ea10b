package simulation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sarchlab/fifosim/datarecording"
	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/monitoring"
	"github.com/sarchlab/fifosim/sim"
	"github.com/sarchlab/fifosim/tracing"
)

// A Simulation provides the services required to run queue controllers: an
// engine, a data recorder with a transition tracer and, optionally, a
// monitoring server.
type Simulation struct {
	id     string
	engine *sim.SerialEngine
	logger *log.Logger

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	monitor      *monitoring.Monitor
	monitorURL   string
	dbTracer     *tracing.DBTracer
	opCounter    *tracing.OpCountTracer
	occupancy    *tracing.OccupancyTracer

	controllers   []*fifo.Controller
	ctrlNameIndex map[string]int

	terminated bool
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetExecRecorder returns the recorder of the execution information.
func (s *Simulation) GetExecRecorder() *datarecording.ExecRecorder {
	return s.execRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server, or an empty
// string if monitoring is disabled.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// GetTracer returns the tracer that records transitions into the database.
func (s *Simulation) GetTracer() *tracing.DBTracer {
	return s.dbTracer
}

// GetOpCounter returns the tracer that counts operations of all the
// registered controllers.
func (s *Simulation) GetOpCounter() *tracing.OpCountTracer {
	return s.opCounter
}

// GetOccupancyTracer returns the tracer that collects the occupancy
// statistics of all the registered controllers.
func (s *Simulation) GetOccupancyTracer() *tracing.OccupancyTracer {
	return s.occupancy
}

// RegisterController registers a controller with the simulation. Its
// transitions are traced and it becomes visible to the monitor.
func (s *Simulation) RegisterController(c *fifo.Controller) {
	name := c.Name()
	if _, found := s.ctrlNameIndex[name]; found {
		panic("controller " + name + " already registered")
	}

	s.controllers = append(s.controllers, c)
	s.ctrlNameIndex[name] = len(s.controllers) - 1

	tracing.CollectTrace(c, s.dbTracer)
	tracing.CollectTrace(c, s.opCounter)
	s.occupancy.Watch(c)

	if s.logger != nil {
		tracing.CollectTrace(c, tracing.NewLogTracer(s.logger, s.engine))
	}

	if s.monitor != nil {
		s.monitor.RegisterController(c)
	}
}

// RegisterClock makes a clock controllable through the monitor.
func (s *Simulation) RegisterClock(c monitoring.Clock) {
	if s.monitor != nil {
		s.monitor.RegisterClock(c)
	}
}

// Controllers returns all the registered controllers.
func (s *Simulation) Controllers() []*fifo.Controller {
	return s.controllers
}

// GetControllerByName returns the controller with the given name, or nil if
// no such controller is registered.
func (s *Simulation) GetControllerByName(name string) *fifo.Controller {
	index, found := s.ctrlNameIndex[name]
	if !found {
		return nil
	}

	return s.controllers[index]
}

// Terminate records the end of the execution, flushes the traces and stops
// the monitoring server.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}

	s.terminated = true

	s.engine.Finished()
	s.execRecorder.End()
	s.dbTracer.Terminate()

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := s.monitor.StopServer(ctx); err != nil {
			return fmt.Errorf("stopping monitor: %w", err)
		}
	}

	return s.dataRecorder.Close()
}
