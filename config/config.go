// Package config holds the settings of a fifosim run. Settings come from
// defaults, an optional YAML file, an optional .env file and FIFOSIM_*
// environment variables, in increasing priority. Command line flags are
// applied last by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/fifosim/sim"
)

// ErrInvalidConfig is wrapped by all validation errors.
var ErrInvalidConfig = errors.New("config: invalid")

// Config describes the controller under test and how to run it.
type Config struct {
	Capacity   int     `yaml:"capacity"`
	DataWidth  int     `yaml:"data_width"`
	FreqMHz    float64 `yaml:"freq_mhz"`
	Cycles     int     `yaml:"cycles"`
	Seed       int64   `yaml:"seed"`
	Output     string  `yaml:"output"`
	RecordIdle bool    `yaml:"record_idle"`

	Trace   TraceConfig   `yaml:"trace"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// TraceConfig limits the transitions written to the trace to a window of
// clock cycles. A zero bound leaves that side of the window open.
type TraceConfig struct {
	StartCycle int `yaml:"start_cycle"`
	EndCycle   int `yaml:"end_cycle"`
}

// MonitorConfig controls the monitoring server.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// Default returns the settings of the reference bench: a 16-entry queue of
// 32-bit words clocked at 100 MHz and 500 randomized cycles.
func Default() Config {
	return Config{
		Capacity:  16,
		DataWidth: 32,
		FreqMHz:   100,
		Cycles:    500,
		Seed:      1,
	}
}

// Freq returns the clock frequency.
func (c Config) Freq() sim.Freq {
	return sim.Freq(c.FreqMHz) * sim.MHz
}

// TraceTimeRange converts the trace window into simulation time.
func (c Config) TraceTimeRange() (start, end sim.VTimeInSec) {
	freq := c.Freq()

	if c.Trace.StartCycle > 0 {
		start = freq.NCyclesLater(c.Trace.StartCycle, 0)
	}

	if c.Trace.EndCycle > 0 {
		end = freq.NCyclesLater(c.Trace.EndCycle, 0)
	}

	return start, end
}

// Validate checks that the settings can build a simulation.
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1, got %d",
			ErrInvalidConfig, c.Capacity)
	}

	if c.DataWidth < 1 || c.DataWidth > 64 {
		return fmt.Errorf("%w: data width must be within 1 to 64, got %d",
			ErrInvalidConfig, c.DataWidth)
	}

	if c.FreqMHz <= 0 {
		return fmt.Errorf("%w: frequency must be positive, got %g MHz",
			ErrInvalidConfig, c.FreqMHz)
	}

	if c.Cycles < 0 {
		return fmt.Errorf("%w: cycles cannot be negative, got %d",
			ErrInvalidConfig, c.Cycles)
	}

	if c.Trace.StartCycle < 0 || c.Trace.EndCycle < 0 {
		return fmt.Errorf("%w: trace cycles cannot be negative",
			ErrInvalidConfig)
	}

	if c.Trace.EndCycle != 0 && c.Trace.EndCycle < c.Trace.StartCycle {
		return fmt.Errorf("%w: trace ends at cycle %d before it starts "+
			"at cycle %d", ErrInvalidConfig,
			c.Trace.EndCycle, c.Trace.StartCycle)
	}

	if c.Monitor.Port != 0 && c.Monitor.Port < 1000 {
		return fmt.Errorf("%w: monitor port must be 0 or at least 1000, "+
			"got %d", ErrInvalidConfig, c.Monitor.Port)
	}

	return nil
}

// LoadFile reads a YAML file on top of the defaults. Unknown keys are
// errors.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the environment.
// Variables already set are not overridden. An empty path loads ".env" if
// it exists.
func LoadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	return godotenv.Load(path)
}

// ApplyEnv overrides settings with the FIFOSIM_* environment variables
// that are set.
func (c *Config) ApplyEnv() error {
	ints := map[string]*int{
		"FIFOSIM_CAPACITY":     &c.Capacity,
		"FIFOSIM_DATA_WIDTH":   &c.DataWidth,
		"FIFOSIM_CYCLES":       &c.Cycles,
		"FIFOSIM_MONITOR_PORT": &c.Monitor.Port,

		"FIFOSIM_TRACE_START_CYCLE": &c.Trace.StartCycle,
		"FIFOSIM_TRACE_END_CYCLE":   &c.Trace.EndCycle,
	}

	for name, field := range ints {
		if err := lookupInt(name, field); err != nil {
			return err
		}
	}

	bools := map[string]*bool{
		"FIFOSIM_RECORD_IDLE":  &c.RecordIdle,
		"FIFOSIM_MONITOR":      &c.Monitor.Enabled,
		"FIFOSIM_OPEN_BROWSER": &c.Monitor.OpenBrowser,
	}

	for name, field := range bools {
		if err := lookupBool(name, field); err != nil {
			return err
		}
	}

	if v, ok := os.LookupEnv("FIFOSIM_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FIFOSIM_SEED: %w", err)
		}

		c.Seed = seed
	}

	if v, ok := os.LookupEnv("FIFOSIM_FREQ_MHZ"); ok {
		freq, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FIFOSIM_FREQ_MHZ: %w", err)
		}

		c.FreqMHz = freq
	}

	if v, ok := os.LookupEnv("FIFOSIM_OUTPUT"); ok {
		c.Output = v
	}

	return nil
}

func lookupInt(name string, field *int) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*field = i

	return nil
}

func lookupBool(name string, field *bool) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*field = b

	return nil
}
