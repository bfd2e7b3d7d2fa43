package surrogate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/transientml/knsurrogate/metadata"
)

// transformOverride keys the per-(model-family, dimension) input-transform
// exceptions. These are quirks of how specific training sets stored their
// parameters; they must match the trained weights exactly, so they live in
// a table instead of being inferred.
type transformOverride struct {
	style metadata.WavelengthStyle
	index int
}

// Kasen-grid models store the lanthanide fraction (dimension 2) as
// -log10(x); its bounds apply to that transformed value.
var negLog10Overrides = map[transformOverride]bool{
	{style: metadata.StyleKasen, index: 2}: true,
}

// NormalizeInputs maps a batch of physical input rows (parameters plus
// trailing time) onto the network's normalized input space, column by
// column. No bounds checking happens here: out-of-range values produce
// out-of-[0,1] or NaN results that propagate silently.
func (m *Model) NormalizeInputs(batch *mat.Dense) *mat.Dense {
	rows, cols := batch.Dims()
	normalized := mat.NewDense(rows, cols, nil)

	for j := 0; j < cols; j++ {
		bounds := m.meta.InputBounds[j]
		span := bounds.Hi - bounds.Lo
		negLog := negLog10Overrides[transformOverride{style: m.meta.Style, index: j}]
		logRule := m.meta.LogRules[j]

		for i := 0; i < rows; i++ {
			x := batch.At(i, j)
			var v float64
			switch {
			case negLog:
				v = (-math.Log10(x) - bounds.Lo) / span
			case logRule:
				v = math.Log10((x - bounds.Lo) / span)
			default:
				v = (x - bounds.Lo) / span
			}
			normalized.Set(i, j, v)
		}
	}

	return normalized
}

// SpectraToRealUnits applies the exact algebraic inverse of the training
// output normalization, mapping raw decoder output back to flux density in
// erg/s/Hz: 10^(y*(hi-lo)+lo) - offset, elementwise.
func (m *Model) SpectraToRealUnits(raw *mat.Dense) *mat.Dense {
	out := m.meta.OutputTransform
	span := out.Hi - out.Lo

	rows, cols := raw.Dims()
	spectra := mat.NewDense(rows, cols, nil)
	spectra.Apply(func(_, _ int, y float64) float64 {
		return math.Pow(10, y*span+out.Lo) - out.Offset
	}, raw)
	return spectra
}
