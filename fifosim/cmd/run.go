package cmd

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/sarchlab/fifosim/harness"
	"github.com/sarchlab/fifosim/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run randomized operations against the reference model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s, err := buildSimulation(cmd, cfg)
		if err != nil {
			return err
		}

		b, err := benchFactory(s, cfg)("Bench")
		if err != nil {
			return err
		}

		if m := s.GetMonitor(); m != nil {
			bar := m.CreateProgressBar("Cycles", uint64(cfg.Cycles))
			b.Controller().AcceptHook(&progressHook{bar: bar})

			defer m.CompleteProgressBar(bar)
		}

		rng := rand.New(rand.NewSource(cfg.Seed))
		runErr := harness.RunRandomized(b, cfg.Cycles, rng)

		printOpCounts(cmd, s.GetOpCounter())
		printOccupancy(cmd, s.GetOccupancyTracer())

		if err := s.Terminate(); err != nil {
			return err
		}

		if runErr != nil {
			return runErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "PASS %d cycles, seed %d\n",
			cfg.Cycles, cfg.Seed)

		return nil
	},
}

func printOpCounts(cmd *cobra.Command, counter *tracing.OpCountTracer) {
	out := cmd.OutOrStdout()

	for _, name := range counter.GetOpNames() {
		fmt.Fprintf(out, "%-10s %d\n", name, counter.GetOpCount(name))
	}
}

func printOccupancy(cmd *cobra.Command, t *tracing.OccupancyTracer) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"occupancy avg %.2f, max %d, full %d ticks, empty %d ticks\n",
		t.AverageOccupancy(), t.MaxOccupancy(),
		t.FullTicks(), t.EmptyTicks())
}

func init() {
	rootCmd.AddCommand(runCmd)
}
