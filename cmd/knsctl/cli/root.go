// Package cli implements the knsctl command tree: spectrum and light-curve
// prediction, likelihood evaluation and run bookkeeping on top of a trained
// kilonova surrogate.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "knsctl",
	Short: "Kilonova surrogate model toolkit",
	Long: "knsctl predicts kilonova spectra and broadband light curves from a " +
		"trained generative surrogate, scores parameter sets against observed " +
		"photometry and keeps a record of past prediction runs.",
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.knsctl.yaml)")
	rootCmd.PersistentFlags().String("metadata", "", "path to the model metadata JSON")
	rootCmd.PersistentFlags().String("weights", "", "path to the decoder weights (.json or .onnx)")
	rootCmd.PersistentFlags().String("filters", "", "directory of filter transmission profiles")
	rootCmd.PersistentFlags().String("store", "memory", "run store backend: memory|sqlite")
	rootCmd.PersistentFlags().String("store-path", "", "sqlite database path for --store=sqlite")

	viper.BindPFlag("model.metadata", rootCmd.PersistentFlags().Lookup("metadata"))
	viper.BindPFlag("model.weights", rootCmd.PersistentFlags().Lookup("weights"))
	viper.BindPFlag("model.filters", rootCmd.PersistentFlags().Lookup("filters"))
	viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store-path"))

	rootCmd.AddCommand(spectraCmd, predictCmd, likelihoodCmd, filtersCmd, runsCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".knsctl")
	}

	// Environment overrides, e.g. KNSCTL_MODEL_METADATA.
	viper.SetEnvPrefix("KNSCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}
