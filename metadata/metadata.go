package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Bounds holds the (lo, hi) range a single input dimension was normalized
// against during training.
type Bounds struct {
	Lo float64
	Hi float64
}

// OutputTransform holds the three scalars of the spectrum normalization:
// the additive offset and the (lo, hi) range of the log flux.
type OutputTransform struct {
	Offset float64
	Lo     float64
	Hi     float64
}

// ModelMetadata is the static configuration of a trained surrogate,
// loaded once and immutable afterwards.
type ModelMetadata struct {
	LatentUnits int
	HiddenUnits int
	InputSize   int

	// Per-input normalization: bounds and the linear-vs-log rule flag,
	// both indexed by input dimension.
	InputBounds []Bounds
	LogRules    []bool

	OutputTransform OutputTransform

	// Wavelength grid, resolved once at load time from the named style
	// (or a legacy wavelength file). Ascending, in angstrom.
	Style       WavelengthStyle
	Wavelengths []float64

	// Legacy construction mode: weights path embedded in the metadata
	// file instead of supplied by the caller.
	WeightsPath string
}

// SpectrumSize is the number of wavelength bins the decoder produces.
func (m *ModelMetadata) SpectrumSize() int {
	return len(m.Wavelengths)
}

// fileSchema mirrors the on-disk JSON layout.
type fileSchema struct {
	LatentUnits       int                  `json:"latent_units"`
	HiddenUnits       int                  `json:"hidden_units"`
	InputSize         int                  `json:"input_size"`
	XTransforms       map[string][]float64 `json:"x_transforms"`
	XTransformRules   []bool               `json:"x_transforms_exp_rules"`
	YTransforms       []float64            `json:"y_transforms"`
	WavelengthsStyle  string               `json:"wavelengths_style"`
	PathToWavelengths string               `json:"path_to_wavelengths"`
	PathToWeights     string               `json:"path_to_pytorch_weights"`
}

// Load reads and validates a metadata descriptor file.
func Load(path string) (*ModelMetadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var schema fileSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("failed to decode metadata file %s: %w", path, err)
	}

	return fromSchema(&schema)
}

func fromSchema(schema *fileSchema) (*ModelMetadata, error) {
	if schema.LatentUnits <= 0 {
		return nil, fmt.Errorf("metadata: latent_units must be positive, got %d", schema.LatentUnits)
	}
	if schema.HiddenUnits <= 0 {
		return nil, fmt.Errorf("metadata: hidden_units must be positive, got %d", schema.HiddenUnits)
	}
	if schema.InputSize <= 0 {
		return nil, fmt.Errorf("metadata: input_size must be positive, got %d", schema.InputSize)
	}

	if len(schema.XTransformRules) != schema.InputSize {
		return nil, fmt.Errorf("metadata: %d transform rules for input_size %d",
			len(schema.XTransformRules), schema.InputSize)
	}

	bounds, err := parseBounds(schema.XTransforms, schema.InputSize)
	if err != nil {
		return nil, err
	}

	if len(schema.YTransforms) != 3 {
		return nil, fmt.Errorf("metadata: y_transforms must have 3 entries [offset, lo, hi], got %d",
			len(schema.YTransforms))
	}

	meta := &ModelMetadata{
		LatentUnits: schema.LatentUnits,
		HiddenUnits: schema.HiddenUnits,
		InputSize:   schema.InputSize,
		InputBounds: bounds,
		LogRules:    schema.XTransformRules,
		OutputTransform: OutputTransform{
			Offset: schema.YTransforms[0],
			Lo:     schema.YTransforms[1],
			Hi:     schema.YTransforms[2],
		},
		WeightsPath: schema.PathToWeights,
	}

	switch {
	case schema.WavelengthsStyle != "":
		style, err := ParseStyle(schema.WavelengthsStyle)
		if err != nil {
			return nil, err
		}
		meta.Style = style
		meta.Wavelengths = style.Grid()
	case schema.PathToWavelengths != "":
		// Older metadata files carry the grid as a file instead of a
		// named style.
		wavelengths, err := loadWavelengthFile(schema.PathToWavelengths)
		if err != nil {
			return nil, err
		}
		meta.Style = StyleUnknown
		meta.Wavelengths = wavelengths
	default:
		return nil, fmt.Errorf("metadata: neither wavelengths_style nor path_to_wavelengths given")
	}

	return meta, nil
}

func parseBounds(transforms map[string][]float64, inputSize int) ([]Bounds, error) {
	if len(transforms) != inputSize {
		return nil, fmt.Errorf("metadata: %d x_transforms entries for input_size %d",
			len(transforms), inputSize)
	}

	bounds := make([]Bounds, inputSize)
	seen := make([]bool, inputSize)
	for key, pair := range transforms {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("metadata: x_transforms key %q is not an integer index", key)
		}
		if idx < 0 || idx >= inputSize {
			return nil, fmt.Errorf("metadata: x_transforms index %d out of range [0, %d)", idx, inputSize)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("metadata: x_transforms[%d] must be a [lo, hi] pair, got %d values",
				idx, len(pair))
		}
		bounds[idx] = Bounds{Lo: pair[0], Hi: pair[1]}
		seen[idx] = true
	}
	for idx, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("metadata: x_transforms missing index %d", idx)
		}
	}
	return bounds, nil
}

// loadWavelengthFile parses a whitespace-delimited numeric wavelength file
// used by the legacy construction mode.
func loadWavelengthFile(path string) ([]float64, error) {
	wavelengths, err := readColumns(path, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load wavelength file %s: %w", path, err)
	}
	grid := wavelengths[0]
	if len(grid) == 0 {
		return nil, fmt.Errorf("wavelength file %s is empty", path)
	}
	if !sort.Float64sAreSorted(grid) {
		return nil, fmt.Errorf("wavelength file %s is not ascending", path)
	}
	return grid, nil
}
