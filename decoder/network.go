package decoder

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/transientml/knsurrogate/checkpoints"
)

// Weight tensor names as exported from the training run. The decoder half
// of the CVAE is the only part the surrogate ever evaluates.
const (
	fc1WeightName = "decoder.fc1.weight"
	fc1BiasName   = "decoder.fc1.bias"
	fc2WeightName = "decoder.fc2.weight"
	fc2BiasName   = "decoder.fc2.bias"
)

// Network is the CVAE decoder: a two-layer perceptron mapping a
// [latent | conditions] row to a normalized spectrum in [0, 1] per bin.
// Weights are frozen at construction; Forward never mutates state.
type Network struct {
	fc1Weight *mat.Dense // hidden × (latent + conditions)
	fc1Bias   []float64
	fc2Weight *mat.Dense // spectrum × hidden
	fc2Bias   []float64

	inputSize    int
	hiddenUnits  int
	spectrumSize int
}

// NewNetwork builds the decoder network from a loaded checkpoint,
// validating every weight shape against the architecture the metadata
// declares. A mismatch is a load-time error, never silent corruption.
func NewNetwork(checkpoint *checkpoints.Checkpoint, latentUnits, conditionSize, hiddenUnits, spectrumSize int) (*Network, error) {
	if latentUnits <= 0 || conditionSize <= 0 || hiddenUnits <= 0 || spectrumSize <= 0 {
		return nil, fmt.Errorf("decoder: all architecture dimensions must be positive, got latent=%d conditions=%d hidden=%d spectrum=%d",
			latentUnits, conditionSize, hiddenUnits, spectrumSize)
	}

	inputSize := latentUnits + conditionSize

	fc1Weight, err := denseTensor(checkpoint, fc1WeightName, hiddenUnits, inputSize)
	if err != nil {
		return nil, err
	}
	fc1Bias, err := vectorTensor(checkpoint, fc1BiasName, hiddenUnits)
	if err != nil {
		return nil, err
	}
	fc2Weight, err := denseTensor(checkpoint, fc2WeightName, spectrumSize, hiddenUnits)
	if err != nil {
		return nil, err
	}
	fc2Bias, err := vectorTensor(checkpoint, fc2BiasName, spectrumSize)
	if err != nil {
		return nil, err
	}

	return &Network{
		fc1Weight:    fc1Weight,
		fc1Bias:      fc1Bias,
		fc2Weight:    fc2Weight,
		fc2Bias:      fc2Bias,
		inputSize:    inputSize,
		hiddenUnits:  hiddenUnits,
		spectrumSize: spectrumSize,
	}, nil
}

func denseTensor(checkpoint *checkpoints.Checkpoint, name string, rows, cols int) (*mat.Dense, error) {
	weight, ok := checkpoint.TensorByName(name)
	if !ok {
		return nil, fmt.Errorf("decoder: checkpoint has no tensor %s", name)
	}
	if len(weight.Shape) != 2 || weight.Shape[0] != rows || weight.Shape[1] != cols {
		return nil, fmt.Errorf("%w: tensor %s has shape %v, architecture requires [%d %d]",
			checkpoints.ErrShapeMismatch, name, weight.Shape, rows, cols)
	}
	return mat.NewDense(rows, cols, weight.Data), nil
}

func vectorTensor(checkpoint *checkpoints.Checkpoint, name string, length int) ([]float64, error) {
	weight, ok := checkpoint.TensorByName(name)
	if !ok {
		return nil, fmt.Errorf("decoder: checkpoint has no tensor %s", name)
	}
	if len(weight.Shape) != 1 || weight.Shape[0] != length {
		return nil, fmt.Errorf("%w: tensor %s has shape %v, architecture requires [%d]",
			checkpoints.ErrShapeMismatch, name, weight.Shape, length)
	}
	return weight.Data, nil
}

// InputSize is the decoder input width: latent units plus condition columns.
func (n *Network) InputSize() int { return n.inputSize }

// SpectrumSize is the number of output wavelength bins.
func (n *Network) SpectrumSize() int { return n.spectrumSize }

// Forward evaluates the decoder for a batch of [latent | conditions] rows.
// Deterministic given identical input.
func (n *Network) Forward(input *mat.Dense) (*mat.Dense, error) {
	rows, cols := input.Dims()
	if cols != n.inputSize {
		return nil, fmt.Errorf("decoder: input has %d columns, network expects %d", cols, n.inputSize)
	}

	var hidden mat.Dense
	hidden.Mul(input, n.fc1Weight.T())
	for i := 0; i < rows; i++ {
		for j := 0; j < n.hiddenUnits; j++ {
			v := hidden.At(i, j) + n.fc1Bias[j]
			if v < 0 { // ReLU
				v = 0
			}
			hidden.Set(i, j, v)
		}
	}

	var output mat.Dense
	output.Mul(&hidden, n.fc2Weight.T())
	for i := 0; i < rows; i++ {
		for j := 0; j < n.spectrumSize; j++ {
			v := output.At(i, j) + n.fc2Bias[j]
			output.Set(i, j, 1.0/(1.0+math.Exp(-v))) // sigmoid
		}
	}

	return &output, nil
}
