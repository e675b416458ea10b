// Package cmd provides the command-line interface of fifosim.
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/fifosim/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fifosim",
	Short: "fifosim simulates and verifies a bounded FIFO queue controller.",
	Long: `fifosim drives a tick-synchronous bounded queue controller with a ` +
		`simulated clock, checks it against a reference model and records ` +
		`every transition into a SQLite trace.`,
	SilenceUsage: true,
}

func init() {
	addConfigFlags(rootCmd)
}

func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.String("config", "", "YAML configuration file")
	flags.String("env-file", "", "file with FIFOSIM_* variables, "+
		"defaults to .env if present")
	flags.BoolP("verbose", "v", false, "log every event and transition")

	flags.Int("capacity", 0, "number of words the queue can hold")
	flags.Int("width", 0, "number of bits in a word")
	flags.Float64("freq-mhz", 0, "clock frequency in MHz")
	flags.Int("cycles", 0, "number of randomized cycles")
	flags.Int64("seed", 0, "seed of the random operations")
	flags.String("output", "", "trace file name, without the .sqlite3 suffix")
	flags.Bool("record-idle", false, "also trace ticks without operations")
	flags.Int("trace-start-cycle", 0, "first cycle written to the trace")
	flags.Int("trace-end-cycle", 0, "last cycle written to the trace")
	flags.Bool("monitor", false, "start the monitoring server")
	flags.Int("monitor-port", 0, "port of the monitoring server")
	flags.Bool("open-browser", false, "open the monitoring page")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadConfig merges, in increasing priority, the defaults, the YAML file,
// the environment and the flags set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Default()

	path, _ := flags.GetString("config")
	if path != "" {
		var err error

		cfg, err = config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
	}

	envFile, _ := flags.GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return cfg, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	applyFlags(cmd, &cfg)

	return cfg, cfg.Validate()
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("capacity") {
		cfg.Capacity, _ = flags.GetInt("capacity")
	}

	if flags.Changed("width") {
		cfg.DataWidth, _ = flags.GetInt("width")
	}

	if flags.Changed("freq-mhz") {
		cfg.FreqMHz, _ = flags.GetFloat64("freq-mhz")
	}

	if flags.Changed("cycles") {
		cfg.Cycles, _ = flags.GetInt("cycles")
	}

	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}

	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}

	if flags.Changed("record-idle") {
		cfg.RecordIdle, _ = flags.GetBool("record-idle")
	}

	if flags.Changed("trace-start-cycle") {
		cfg.Trace.StartCycle, _ = flags.GetInt("trace-start-cycle")
	}

	if flags.Changed("trace-end-cycle") {
		cfg.Trace.EndCycle, _ = flags.GetInt("trace-end-cycle")
	}

	if flags.Changed("monitor") {
		cfg.Monitor.Enabled, _ = flags.GetBool("monitor")
	}

	if flags.Changed("monitor-port") {
		cfg.Monitor.Port, _ = flags.GetInt("monitor-port")
	}

	if flags.Changed("open-browser") {
		cfg.Monitor.OpenBrowser, _ = flags.GetBool("open-browser")
	}
}

func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return nil
	}

	return log.New(os.Stderr, "", 0)
}
