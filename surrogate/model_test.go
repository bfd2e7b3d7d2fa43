package surrogate

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/transientml/knsurrogate/checkpoints"
	"github.com/transientml/knsurrogate/decoder"
)

// writeFixtureModel lays out a complete on-disk model: metadata descriptor,
// JSON weights and a filter directory with one boxcar profile.
func writeFixtureModel(t *testing.T) (metadataPath, weightsPath, filterDir string) {
	t.Helper()
	dir := t.TempDir()

	const (
		latent   = 2
		inputs   = 3
		hidden   = 4
		spectrum = 500 // bulla grid
	)

	metadataPath = filepath.Join(dir, "metadata.json")
	descriptor := `{
		"latent_units": 2,
		"hidden_units": 4,
		"input_size": 3,
		"x_transforms": {"0": [0, 2], "1": [1, 11], "2": [0, 10]},
		"x_transforms_exp_rules": [false, true, false],
		"y_transforms": [0, -12, -8],
		"wavelengths_style": "bulla"
	}`
	if err := os.WriteFile(metadataPath, []byte(descriptor), 0o644); err != nil {
		t.Fatalf("failed to write metadata fixture: %v", err)
	}

	checkpoint := &checkpoints.Checkpoint{
		Weights: []checkpoints.WeightTensor{
			{Name: "decoder.fc1.weight", Shape: []int{hidden, latent + inputs},
				Data: make([]float64, hidden*(latent+inputs)), Layer: "fc1", Type: "weight"},
			{Name: "decoder.fc1.bias", Shape: []int{hidden},
				Data: make([]float64, hidden), Layer: "fc1", Type: "bias"},
			{Name: "decoder.fc2.weight", Shape: []int{spectrum, hidden},
				Data: make([]float64, spectrum*hidden), Layer: "fc2", Type: "weight"},
			{Name: "decoder.fc2.bias", Shape: []int{spectrum},
				Data: make([]float64, spectrum), Layer: "fc2", Type: "bias"},
		},
	}
	weightsPath = filepath.Join(dir, "weights.json")
	saver := checkpoints.NewCheckpointSaver(checkpoints.FormatJSON)
	if err := saver.SaveCheckpoint(checkpoint, weightsPath); err != nil {
		t.Fatalf("failed to write weights fixture: %v", err)
	}

	filterDir = filepath.Join(dir, "filters")
	if err := os.Mkdir(filterDir, 0o755); err != nil {
		t.Fatalf("failed to create filter dir: %v", err)
	}
	profile := ""
	for w := 4000.0; w <= 6000.0; w += 100.0 {
		profile += fmt.Sprintf("%g 0.8\n", w)
	}
	if err := os.WriteFile(filepath.Join(filterDir, "sdss_g.dat"), []byte(profile), 0o644); err != nil {
		t.Fatalf("failed to write filter fixture: %v", err)
	}
	return metadataPath, weightsPath, filterDir
}

func TestNewEndToEnd(t *testing.T) {
	metadataPath, weightsPath, filterDir := writeFixtureModel(t)

	model, err := New(Config{
		MetadataPath: metadataPath,
		WeightsPath:  weightsPath,
		FilterDir:    filterDir,
		NumSamples:   1,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !model.FiltersLoaded() {
		t.Fatal("FiltersLoaded = false after loading a filter directory")
	}

	// Zero weights and a single zero-latent sample make the decoder emit
	// sigmoid(0) = 0.5 everywhere, so the physical spectrum is the exact
	// output transform of 0.5.
	spectra, uniqueTimes, err := model.PredictSpectra([]float64{1.0, 6.0}, []float64{1.0, 3.0, 1.0})
	if err != nil {
		t.Fatalf("PredictSpectra failed: %v", err)
	}
	if len(uniqueTimes) != 2 {
		t.Fatalf("uniqueTimes = %v, expected 2 entries", uniqueTimes)
	}
	rows, cols := spectra.Dims()
	if rows != 2 || cols != 500 {
		t.Fatalf("spectra dims = (%d, %d), expected (2, 500)", rows, cols)
	}
	want := math.Pow(10, 0.5*4-12)
	for j := 0; j < cols; j += 100 {
		if got := spectra.At(0, j); math.Abs(got-want) > want*1e-9 {
			t.Errorf("spectrum bin %d = %g, expected %g", j, got, want)
		}
	}

	magnitudes, err := model.PredictMagnitudes([]float64{1.0, 6.0},
		[]float64{1.0}, []string{"sdss_g"}, 3.086e19) // 10 pc in cm
	if err != nil {
		t.Fatalf("PredictMagnitudes failed: %v", err)
	}
	if len(magnitudes) != 1 {
		t.Fatalf("got %d magnitudes, expected 1", len(magnitudes))
	}
	if math.IsNaN(magnitudes[0]) || math.IsInf(magnitudes[0], 0) {
		t.Errorf("magnitude = %g, expected a finite value", magnitudes[0])
	}
}

func TestNewWithoutFilters(t *testing.T) {
	metadataPath, weightsPath, _ := writeFixtureModel(t)

	model, err := New(Config{
		MetadataPath: metadataPath,
		WeightsPath:  weightsPath,
		NumSamples:   1,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if model.FiltersLoaded() {
		t.Error("FiltersLoaded = true without a filter directory")
	}
}

func TestNewReproducibleEnsembles(t *testing.T) {
	metadataPath, weightsPath, _ := writeFixtureModel(t)

	build := func() *Model {
		model, err := New(Config{
			MetadataPath: metadataPath,
			WeightsPath:  weightsPath,
			NumSamples:   decoder.DefaultNumSamples,
			Seed:         42,
		})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return model
	}

	first, _, err := build().PredictSpectra([]float64{1.0, 6.0}, []float64{1.0})
	if err != nil {
		t.Fatalf("PredictSpectra failed: %v", err)
	}
	second, _, err := build().PredictSpectra([]float64{1.0, 6.0}, []float64{1.0})
	if err != nil {
		t.Fatalf("PredictSpectra failed: %v", err)
	}

	_, cols := first.Dims()
	for j := 0; j < cols; j += 50 {
		if first.At(0, j) != second.At(0, j) {
			t.Fatalf("bin %d differs between identically seeded models: %g vs %g",
				j, first.At(0, j), second.At(0, j))
		}
	}
}

func TestNewErrorPaths(t *testing.T) {
	metadataPath, _, _ := writeFixtureModel(t)

	if _, err := New(Config{MetadataPath: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("New accepted a missing metadata file")
	}
	// Fixture metadata carries no legacy weights path, so omitting
	// WeightsPath has nothing to fall back on.
	if _, err := New(Config{MetadataPath: metadataPath}); err == nil {
		t.Error("New accepted a config with no weights path at all")
	}
	if _, err := New(Config{
		MetadataPath: metadataPath,
		WeightsPath:  filepath.Join(t.TempDir(), "missing.json"),
	}); err == nil {
		t.Error("New accepted a missing weights file")
	}
}
