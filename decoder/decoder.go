// Package decoder evaluates the pretrained generative decoder on the CPU.
// It owns nothing but frozen weights and a latent sampling strategy; all
// physical-unit interpretation happens in the surrogate package.
package decoder

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
)

// DefaultNumSamples matches the ensemble size the model was validated with.
const DefaultNumSamples = 10

// Config selects the decode strategy: 1 latent sample means a single
// deterministic pass with a zero latent vector, N > 1 means N
// standard-normal latent draws averaged together.
type Config struct {
	NumSamples int
	// Seed fixes the latent RNG; 0 seeds from the clock.
	Seed int64
}

// Decoder wraps a Network with latent sampling and ensemble averaging.
type Decoder struct {
	network     *Network
	latentUnits int
	numSamples  int
	rng         *rand.Rand
}

// New creates a decoder over the given network.
func New(network *Network, latentUnits int, config Config) (*Decoder, error) {
	if config.NumSamples <= 0 {
		return nil, fmt.Errorf("decoder: num samples must be positive, got %d", config.NumSamples)
	}
	if latentUnits <= 0 || latentUnits >= network.InputSize() {
		return nil, fmt.Errorf("decoder: latent units %d incompatible with network input size %d",
			latentUnits, network.InputSize())
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Decoder{
		network:     network,
		latentUnits: latentUnits,
		numSamples:  config.NumSamples,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// NumSamples is the configured latent draw count.
func (d *Decoder) NumSamples() int { return d.numSamples }

// SpectrumSize is the number of wavelength bins per decoded spectrum.
func (d *Decoder) SpectrumSize() int { return d.network.SpectrumSize() }

// Decode produces one normalized spectrum per condition row. With a single
// sample the latent vector is fixed to zero; otherwise each draw uses one
// latent vector repeated across the whole batch, and the ensemble is
// averaged elementwise.
func (d *Decoder) Decode(conditions *mat.Dense) (*mat.Dense, error) {
	rows, cols := conditions.Dims()
	if cols != d.network.InputSize()-d.latentUnits {
		return nil, fmt.Errorf("decoder: conditions have %d columns, expected %d",
			cols, d.network.InputSize()-d.latentUnits)
	}

	sum := mat.NewDense(rows, d.network.SpectrumSize(), nil)
	input := mat.NewDense(rows, d.network.InputSize(), nil)

	for sample := 0; sample < d.numSamples; sample++ {
		latent := make([]float64, d.latentUnits)
		if d.numSamples > 1 {
			for i := range latent {
				latent[i] = d.rng.NormFloat64()
			}
		}

		for i := 0; i < rows; i++ {
			for j, z := range latent {
				input.Set(i, j, z)
			}
			for j := 0; j < cols; j++ {
				input.Set(i, d.latentUnits+j, conditions.At(i, j))
			}
		}

		output, err := d.network.Forward(input)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, output)
	}

	if d.numSamples > 1 {
		sum.Scale(1.0/float64(d.numSamples), sum)
	}
	return sum, nil
}
