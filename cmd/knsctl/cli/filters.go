package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/transientml/knsurrogate/photometry"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the loaded filter library",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("model.filters")
		if dir == "" {
			return fmt.Errorf("--filters is required (or model.filters in the config file)")
		}

		library, err := photometry.LoadLibrary(dir)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-14s %s\n", "filter", "pivot [AA]", "AB zero point")
		for _, name := range library.Names() {
			curve, err := library.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-14.1f %.4f\n",
				name, curve.PivotWavelength(), curve.ABZeroMag())
		}
		return nil
	},
}
