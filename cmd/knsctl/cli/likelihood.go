package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
)

var (
	likelihoodParams       string
	likelihoodObservations string
	likelihoodDistance     float64
	likelihoodSamples      int
	likelihoodSeed         int64
	likelihoodSave         bool
)

var likelihoodCmd = &cobra.Command{
	Use:   "likelihood",
	Short: "Score parameters against observed photometry",
	Long: "Evaluates the prior, the Gaussian likelihood and their sum for a " +
		"parameter set against an observation CSV. A -Inf likelihood means an " +
		"upper limit vetoed the parameters.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseFloats(likelihoodParams)
		if err != nil {
			return fmt.Errorf("--params: %w", err)
		}

		model, err := buildModel(likelihoodObservations, likelihoodDistance, likelihoodSamples, likelihoodSeed)
		if err != nil {
			return err
		}

		prior, err := model.LogPrior(params)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "log prior:       %g\n", prior)
		if math.IsInf(prior, -1) {
			fmt.Fprintf(cmd.OutOrStdout(), "log probability: %g\n", math.Inf(-1))
			return nil
		}

		likelihood, err := model.LogLikelihood(params)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "log likelihood:  %g\n", likelihood)
		fmt.Fprintf(cmd.OutOrStdout(), "log probability: %g\n", prior+likelihood)

		if likelihoodSave {
			obs := model.Observations()
			magnitudes, err := model.PredictMagnitudes(params, nil, nil, 0)
			if err != nil {
				return err
			}
			score := likelihood
			return saveRun(cmd.Context(), params, obs.Distance,
				obs.Times, obs.Filters, magnitudes, &score)
		}
		return nil
	},
}

func init() {
	likelihoodCmd.Flags().StringVarP(&likelihoodParams, "params", "p", "", "comma-separated physical parameters (required)")
	likelihoodCmd.Flags().StringVar(&likelihoodObservations, "observations", "", "observation CSV (required)")
	likelihoodCmd.Flags().Float64VarP(&likelihoodDistance, "distance", "d", 0, "luminosity distance in cm (required)")
	likelihoodCmd.Flags().IntVar(&likelihoodSamples, "samples", 0, "latent ensemble size (0 selects the default)")
	likelihoodCmd.Flags().Int64Var(&likelihoodSeed, "seed", 0, "latent RNG seed")
	likelihoodCmd.Flags().BoolVar(&likelihoodSave, "save", false, "persist the scored prediction in the run store")

	likelihoodCmd.MarkFlagRequired("params")
	likelihoodCmd.MarkFlagRequired("observations")
	likelihoodCmd.MarkFlagRequired("distance")
}
