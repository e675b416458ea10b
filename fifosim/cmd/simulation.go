package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/fifosim/config"
	"github.com/sarchlab/fifosim/fifo"
	"github.com/sarchlab/fifosim/harness"
	"github.com/sarchlab/fifosim/monitoring"
	"github.com/sarchlab/fifosim/sim"
	"github.com/sarchlab/fifosim/simulation"
)

func buildSimulation(
	cmd *cobra.Command,
	cfg config.Config,
) (*simulation.Simulation, error) {
	b := simulation.MakeBuilder().WithOutputFileName(cfg.Output)

	if cfg.Monitor.Enabled {
		b = b.WithMonitorPort(cfg.Monitor.Port)

		if cfg.Monitor.OpenBrowser {
			b = b.WithBrowser()
		}
	} else {
		b = b.WithoutMonitoring()
	}

	b = b.WithTraceTimeRange(cfg.TraceTimeRange())

	if cfg.RecordIdle {
		b = b.WithIdleTicksRecorded()
	}

	if logger := newLogger(cmd); logger != nil {
		b = b.WithLogger(logger)
	}

	s, err := b.Build()
	if err != nil {
		return nil, err
	}

	exec := s.GetExecRecorder()
	exec.AddProperty("Capacity", strconv.Itoa(cfg.Capacity))
	exec.AddProperty("Data Width", strconv.Itoa(cfg.DataWidth))
	exec.AddProperty("Seed", strconv.FormatInt(cfg.Seed, 10))

	return s, nil
}

// benchFactory returns a function that builds benches on the simulation
// engine and registers them with the simulation.
func benchFactory(
	s *simulation.Simulation,
	cfg config.Config,
) func(name string) (*harness.Bench, error) {
	return func(name string) (*harness.Bench, error) {
		b, err := harness.MakeBenchBuilder().
			WithEngine(s.GetEngine()).
			WithFreq(cfg.Freq()).
			WithCapacity(cfg.Capacity).
			WithDataWidth(cfg.DataWidth).
			Build(name)
		if err != nil {
			return nil, err
		}

		s.RegisterController(b.Controller())
		s.RegisterClock(b)

		return b, nil
	}
}

// progressHook advances a progress bar on every tick of a controller.
type progressHook struct {
	bar *monitoring.ProgressBar
}

func (h *progressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != fifo.HookPosTick {
		return
	}

	h.bar.IncrementFinished(1)
}
