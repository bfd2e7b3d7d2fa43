// Package surrogate predicts kilonova light curves from a pretrained
// generative decoder: physical parameters are normalized into network
// inputs, decoded into synthetic spectra, converted back to physical flux
// units and integrated against filter curves into AB magnitudes.
package surrogate

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/transientml/knsurrogate/checkpoints"
	"github.com/transientml/knsurrogate/decoder"
	"github.com/transientml/knsurrogate/metadata"
	"github.com/transientml/knsurrogate/observations"
	"github.com/transientml/knsurrogate/photometry"
)

// SpectralDecoder is the narrow contract the surrogate needs from the
// generative network: deterministic given identical input and latent
// state, shape-stable, inference only.
type SpectralDecoder interface {
	Decode(conditions *mat.Dense) (*mat.Dense, error)
	SpectrumSize() int
}

// Bandpass is the contract the surrogate needs from one filter curve.
type Bandpass interface {
	Flux(wavelengths, spectrum []float64) (float64, error)
	Magnitude(flux float64) float64
}

// BandpassLibrary resolves filter names to bandpasses.
type BandpassLibrary interface {
	Get(name string) (Bandpass, error)
}

// filterLibrary adapts photometry.Library to the BandpassLibrary contract.
type filterLibrary struct {
	library *photometry.Library
}

func (f filterLibrary) Get(name string) (Bandpass, error) {
	return f.library.Get(name)
}

// Config describes how to construct a Model.
type Config struct {
	// MetadataPath locates the JSON metadata descriptor.
	MetadataPath string
	// WeightsPath locates the decoder weights; files ending in .onnx are
	// read as ONNX, everything else as the native JSON checkpoint. Empty
	// falls back to the legacy path embedded in the metadata.
	WeightsPath string
	// FilterDir locates the filter profile directory. Empty constructs
	// the model without photometric capability.
	FilterDir string
	// Observations optionally binds a measurement set reused across
	// repeated likelihood evaluations.
	Observations *observations.Set
	// NumSamples is the latent draw count: 1 decodes once with a zero
	// latent vector, N > 1 averages N stochastic decodes. Zero selects
	// the default ensemble size.
	NumSamples int
	// Seed fixes the latent RNG for reproducible ensembles.
	Seed int64
}

// Model is the kilonova surrogate. Metadata, decoder weights and filters
// are loaded once at construction and immutable afterwards; every
// prediction call is pure computation over them.
type Model struct {
	meta    *metadata.ModelMetadata
	decoder SpectralDecoder
	filters BandpassLibrary
	obs     *observations.Set
}

// New loads metadata, weights and (optionally) a filter library, and
// returns a ready model with frozen weights.
func New(config Config) (*Model, error) {
	meta, err := metadata.Load(config.MetadataPath)
	if err != nil {
		return nil, err
	}

	weightsPath := config.WeightsPath
	if weightsPath == "" {
		weightsPath = meta.WeightsPath
	}
	if weightsPath == "" {
		return nil, fmt.Errorf("surrogate: no weights path given and metadata carries none")
	}

	format := checkpoints.FormatJSON
	if strings.EqualFold(filepath.Ext(weightsPath), ".onnx") {
		format = checkpoints.FormatONNX
	}
	checkpoint, err := checkpoints.NewCheckpointSaver(format).LoadCheckpoint(weightsPath)
	if err != nil {
		return nil, err
	}

	network, err := decoder.NewNetwork(checkpoint,
		meta.LatentUnits, meta.InputSize, meta.HiddenUnits, meta.SpectrumSize())
	if err != nil {
		return nil, err
	}

	numSamples := config.NumSamples
	if numSamples == 0 {
		numSamples = decoder.DefaultNumSamples
	}
	dec, err := decoder.New(network, meta.LatentUnits, decoder.Config{
		NumSamples: numSamples,
		Seed:       config.Seed,
	})
	if err != nil {
		return nil, err
	}

	var filters BandpassLibrary
	if config.FilterDir != "" {
		library, err := photometry.LoadLibrary(config.FilterDir)
		if err != nil {
			return nil, err
		}
		filters = filterLibrary{library: library}
	}

	return &Model{
		meta:    meta,
		decoder: dec,
		filters: filters,
		obs:     config.Observations,
	}, nil
}

// NewFromComponents assembles a model from preconstructed parts. The
// decoder and filter library can be stubbed, which isolates the transform
// pipeline from the network and photometry implementations.
func NewFromComponents(meta *metadata.ModelMetadata, dec SpectralDecoder,
	filters BandpassLibrary, obs *observations.Set) (*Model, error) {
	if meta == nil {
		return nil, fmt.Errorf("surrogate: metadata is required")
	}
	if dec == nil {
		return nil, fmt.Errorf("surrogate: a decoder is required")
	}
	if dec.SpectrumSize() != meta.SpectrumSize() {
		return nil, fmt.Errorf("%w: decoder produces %d bins, wavelength grid has %d",
			checkpoints.ErrShapeMismatch, dec.SpectrumSize(), meta.SpectrumSize())
	}
	return &Model{meta: meta, decoder: dec, filters: filters, obs: obs}, nil
}

// Metadata exposes the loaded model configuration.
func (m *Model) Metadata() *metadata.ModelMetadata {
	return m.meta
}

// FiltersLoaded reports whether the model has photometric capability.
func (m *Model) FiltersLoaded() bool {
	return m.filters != nil
}

// Observations returns the bound observation set, or nil.
func (m *Model) Observations() *observations.Set {
	return m.obs
}
