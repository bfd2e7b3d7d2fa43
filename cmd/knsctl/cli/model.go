package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/transientml/knsurrogate/observations"
	"github.com/transientml/knsurrogate/storage"
	"github.com/transientml/knsurrogate/surrogate"
)

// buildModel assembles a surrogate model from the resolved configuration,
// optionally binding an observation set loaded from a CSV file.
func buildModel(observationsPath string, distance float64, samples int, seed int64) (*surrogate.Model, error) {
	metadataPath := viper.GetString("model.metadata")
	if metadataPath == "" {
		return nil, fmt.Errorf("--metadata is required (or model.metadata in the config file)")
	}

	var obs *observations.Set
	if observationsPath != "" {
		var err error
		obs, err = observations.LoadCSV(observationsPath, distance)
		if err != nil {
			return nil, err
		}
	}

	return surrogate.New(surrogate.Config{
		MetadataPath: metadataPath,
		WeightsPath:  viper.GetString("model.weights"),
		FilterDir:    viper.GetString("model.filters"),
		Observations: obs,
		NumSamples:   samples,
		Seed:         seed,
	})
}

func openStore() (storage.Store, error) {
	return storage.NewStore(viper.GetString("store.backend"), viper.GetString("store.path"))
}

// parseFloats splits a comma-separated list of numbers.
func parseFloats(list string) ([]float64, error) {
	if strings.TrimSpace(list) == "" {
		return nil, fmt.Errorf("empty number list")
	}
	fields := strings.Split(list, ",")
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", strings.TrimSpace(field), err)
		}
		values = append(values, v)
	}
	return values, nil
}

// parseStrings splits a comma-separated list of names.
func parseStrings(list string) []string {
	fields := strings.Split(list, ",")
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
