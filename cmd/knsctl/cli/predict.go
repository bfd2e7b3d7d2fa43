package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientml/knsurrogate/storage"
)

var (
	predictParams       string
	predictTimes        string
	predictBands        string
	predictObservations string
	predictDistance     float64
	predictSamples      int
	predictSeed         int64
	predictSave         bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict apparent AB magnitudes",
	Long: "Predicts apparent AB magnitudes either at explicit epoch/band pairs " +
		"(--times and --bands, with --distance in cm) or at the epochs of an " +
		"observation CSV (--observations). A single --bands entry is applied " +
		"to every epoch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseFloats(predictParams)
		if err != nil {
			return fmt.Errorf("--params: %w", err)
		}

		var times []float64
		var bands []string
		if predictTimes != "" {
			times, err = parseFloats(predictTimes)
			if err != nil {
				return fmt.Errorf("--times: %w", err)
			}
			bands = parseStrings(predictBands)
			if len(bands) == 1 {
				broadcast := make([]string, len(times))
				for i := range broadcast {
					broadcast[i] = bands[0]
				}
				bands = broadcast
			}
			if len(bands) != len(times) {
				return fmt.Errorf("--bands must name 1 or %d filters, got %d", len(times), len(bands))
			}
		} else if predictObservations == "" {
			return fmt.Errorf("either --times/--bands or --observations is required")
		}

		model, err := buildModel(predictObservations, predictDistance, predictSamples, predictSeed)
		if err != nil {
			return err
		}

		magnitudes, err := model.PredictMagnitudes(params, times, bands, predictDistance)
		if err != nil {
			return err
		}

		if times == nil {
			obs := model.Observations()
			times = obs.Times
			bands = obs.Filters
		}
		for i := range magnitudes {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10g %-12s %.4f\n", times[i], bands[i], magnitudes[i])
		}

		if predictSave {
			return saveRun(cmd.Context(), params, predictDistance, times, bands, magnitudes, nil)
		}
		return nil
	},
}

// saveRun persists a finished prediction in the configured run store.
func saveRun(ctx context.Context, params []float64, distance float64,
	times []float64, bands []string, magnitudes []float64, score *float64) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(store)

	if err := store.Init(ctx); err != nil {
		return err
	}

	run := storage.NewRun(params, distance)
	run.Times = times
	run.Filters = bands
	run.Magnitudes = magnitudes
	run.LogLikelihood = score
	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}
	fmt.Printf("saved run %s\n", run.ID)
	return nil
}

func init() {
	predictCmd.Flags().StringVarP(&predictParams, "params", "p", "", "comma-separated physical parameters (required)")
	predictCmd.Flags().StringVarP(&predictTimes, "times", "t", "", "comma-separated epochs in days")
	predictCmd.Flags().StringVarP(&predictBands, "bands", "b", "", "comma-separated filter names, one per epoch or one for all")
	predictCmd.Flags().StringVar(&predictObservations, "observations", "", "observation CSV supplying epochs, bands and distance")
	predictCmd.Flags().Float64VarP(&predictDistance, "distance", "d", 0, "luminosity distance in cm")
	predictCmd.Flags().IntVar(&predictSamples, "samples", 0, "latent ensemble size (0 selects the default)")
	predictCmd.Flags().Int64Var(&predictSeed, "seed", 0, "latent RNG seed")
	predictCmd.Flags().BoolVar(&predictSave, "save", false, "persist the prediction in the run store")

	predictCmd.MarkFlagRequired("params")
}
