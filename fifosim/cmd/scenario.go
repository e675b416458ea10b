package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/fifosim/harness"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [name...]",
	Short: "Run verification scenarios, all of them if no name is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		scenarios, err := selectScenarios(
			harness.Scenarios(cfg.Cycles, cfg.Seed), args)
		if err != nil {
			return err
		}

		s, err := buildSimulation(cmd, cfg)
		if err != nil {
			return err
		}

		newBench := benchFactory(s, cfg)
		out := cmd.OutOrStdout()
		failed := 0

		for _, sc := range scenarios {
			err := harness.RunAll([]harness.Scenario{sc}, newBench)
			if err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %s\n", sc.Name, err)

				continue
			}

			fmt.Fprintf(out, "PASS %s\n", sc.Name)
		}

		if err := s.Terminate(); err != nil {
			return err
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed",
				failed, len(scenarios))
		}

		return nil
	},
}

func selectScenarios(
	all []harness.Scenario,
	names []string,
) ([]harness.Scenario, error) {
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]harness.Scenario)
	available := make([]string, 0, len(all))

	for _, sc := range all {
		byName[strings.ToLower(sc.Name)] = sc
		available = append(available, sc.Name)
	}

	selected := make([]harness.Scenario, 0, len(names))

	for _, name := range names {
		sc, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q, available: %s",
				name, strings.Join(available, ", "))
		}

		selected = append(selected, sc)
	}

	return selected, nil
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}
