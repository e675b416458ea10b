package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/fifosim/harness"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run randomized operations and keep the monitor up until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		cfg.Monitor.Enabled = true

		s, err := buildSimulation(cmd, cfg)
		if err != nil {
			return err
		}

		b, err := benchFactory(s, cfg)("Bench")
		if err != nil {
			return err
		}

		rng := rand.New(rand.NewSource(cfg.Seed))
		if err := harness.RunRandomized(b, cfg.Cycles, rng); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s\n", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Serving %s, press Ctrl-C to stop\n", s.MonitorURL())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		<-ctx.Done()

		return s.Terminate()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
