package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	spectraParams string
	spectraTimes  string
	spectraOutput string
	spectraSample int
	spectraSeed   int64
)

var spectraCmd = &cobra.Command{
	Use:   "spectra",
	Short: "Predict synthetic spectra at the given epochs",
	Long: "Decodes one spectrum per requested epoch and writes a whitespace " +
		"table: wavelength in angstrom followed by one flux-density column " +
		"(erg/s/Hz) per epoch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseFloats(spectraParams)
		if err != nil {
			return fmt.Errorf("--params: %w", err)
		}
		times, err := parseFloats(spectraTimes)
		if err != nil {
			return fmt.Errorf("--times: %w", err)
		}

		model, err := buildModel("", 0, spectraSample, spectraSeed)
		if err != nil {
			return err
		}

		spectra, uniqueTimes, err := model.PredictSpectra(params, times)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if spectraOutput != "" {
			file, err := os.Create(spectraOutput)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}
		return writeSpectraTable(out, model.Metadata().Wavelengths, uniqueTimes, spectra)
	},
}

func writeSpectraTable(w io.Writer, wavelengths, times []float64, spectra interface {
	At(i, j int) float64
}) error {
	if _, err := fmt.Fprint(w, "# wavelength_aa"); err != nil {
		return err
	}
	for _, t := range times {
		if _, err := fmt.Fprintf(w, " flux_t%g", t); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for j, wavelength := range wavelengths {
		if _, err := fmt.Fprintf(w, "%g", wavelength); err != nil {
			return err
		}
		for i := range times {
			if _, err := fmt.Fprintf(w, " %.6e", spectra.At(i, j)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	spectraCmd.Flags().StringVarP(&spectraParams, "params", "p", "", "comma-separated physical parameters (required)")
	spectraCmd.Flags().StringVarP(&spectraTimes, "times", "t", "", "comma-separated epochs in days (required)")
	spectraCmd.Flags().StringVarP(&spectraOutput, "output", "o", "", "write the table to a file instead of stdout")
	spectraCmd.Flags().IntVar(&spectraSample, "samples", 0, "latent ensemble size (0 selects the default)")
	spectraCmd.Flags().Int64Var(&spectraSeed, "seed", 0, "latent RNG seed")

	spectraCmd.MarkFlagRequired("params")
	spectraCmd.MarkFlagRequired("times")
}
