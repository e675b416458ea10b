package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/fifosim/datarecording"
	"github.com/sarchlab/fifosim/tracing"
)

var traceCmd = &cobra.Command{
	Use:   "trace [file.sqlite3]",
	Short: "Print the transitions recorded in a trace file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		where, _ := cmd.Flags().GetString("location")

		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		reader.MapTable(tracing.TransitionTableName, tracing.TransitionEntry{})

		params := datarecording.QueryParams{
			OrderBy: "Time, Cycle",
			Limit:   limit,
		}

		if where != "" {
			params.Where = "Location = ?"
			params.Args = []any{where}
		}

		results, total, err := reader.Query(
			cmd.Context(), tracing.TransitionTableName, params)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range results {
			e := r.(*tracing.TransitionEntry)
			fmt.Fprintf(out, "%.10f %s cycle %d push=%t drop=%t "+
				"occupancy %d -> %d",
				e.Time, e.Location, e.Cycle,
				e.PushAccepted, e.DropAccepted,
				e.OccupancyBefore, e.OccupancyAfter)

			if e.DropAccepted {
				fmt.Fprintf(out, " dropped %s", e.DroppedWord)
			}

			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "%d of %d transitions\n", len(results), total)

		return nil
	},
}

func init() {
	traceCmd.Flags().Int("limit", 0, "maximum number of transitions to print")
	traceCmd.Flags().String("location", "", "only print this controller")
	rootCmd.AddCommand(traceCmd)
}
