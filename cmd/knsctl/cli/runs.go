package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientml/knsurrogate/storage"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded prediction runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer storage.CloseIfSupported(store)
		if err := store.Init(cmd.Context()); err != nil {
			return err
		}

		runs, err := store.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-36s %-20s %-8s %s\n", "id", "created", "points", "log likelihood")
		for _, run := range runs {
			score := "-"
			if run.LogLikelihood != nil {
				score = fmt.Sprintf("%g", *run.LogLikelihood)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-36s %-20s %-8d %s\n",
				run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), len(run.Times), score)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer storage.CloseIfSupported(store)
		if err := store.Init(cmd.Context()); err != nil {
			return err
		}

		run, ok, err := store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no run with id %s", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:         %s\n", run.ID)
		fmt.Fprintf(out, "created:    %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "parameters: %v\n", run.Parameters)
		fmt.Fprintf(out, "distance:   %g cm\n", run.Distance)
		if run.LogLikelihood != nil {
			fmt.Fprintf(out, "log likelihood: %g\n", *run.LogLikelihood)
		}
		for i := range run.Times {
			fmt.Fprintf(out, "%-10g %-12s %.4f\n", run.Times[i], run.Filters[i], run.Magnitudes[i])
		}
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer storage.CloseIfSupported(store)
		if err := store.Init(cmd.Context()); err != nil {
			return err
		}
		return store.DeleteRun(cmd.Context(), args[0])
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd)
}
