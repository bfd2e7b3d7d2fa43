package surrogate

import (
	"fmt"
	"math"
)

// modelUncertainty is the additive magnitude-error floor applied to every
// observation in the Gaussian likelihood, following Coughlin et al.
const modelUncertainty = 1.0

// LogLikelihood computes the Gaussian log-likelihood of the bound
// observations under the given physical parameters, with per-point errors
// inflated by the model uncertainty floor. Any upper-limit observation the
// prediction over-shoots in brightness vetoes the whole parameter vector:
// the result is -Inf regardless of the remaining residuals.
func (m *Model) LogLikelihood(params []float64) (float64, error) {
	if m.obs == nil {
		return 0, ErrNoObservations
	}

	predictions, err := m.PredictMagnitudes(params, m.obs.Times, m.obs.Filters, m.obs.Distance)
	if err != nil {
		return 0, err
	}

	for _, idx := range m.obs.UpperLimitIndices {
		// Numerically smaller magnitude = brighter than the non-detection
		// threshold, which is physically inadmissible.
		if predictions[idx] < m.obs.Magnitudes[idx] {
			return math.Inf(-1), nil
		}
	}

	sum := 0.0
	for i, prediction := range predictions {
		residual := prediction - m.obs.Magnitudes[i]
		sigma := m.obs.MagnitudeErrors[i] + modelUncertainty
		sum += residual * residual / (sigma * sigma)
	}
	return -0.5 * sum, nil
}

// PriorTransform maps a nested-sampling unit cube onto the physical
// parameter ranges. The bound order is deliberately reversed relative to
// the input normalizer (param = u*(lo-hi) + hi); the trained model expects
// this polarity, so it is preserved as is.
func (m *Model) PriorTransform(unit []float64) ([]float64, error) {
	if len(unit) != m.meta.InputSize-1 {
		return nil, fmt.Errorf("surrogate: %d unit-cube values for %d physical parameters",
			len(unit), m.meta.InputSize-1)
	}

	params := make([]float64, len(unit))
	for i, u := range unit {
		bounds := m.meta.InputBounds[i]
		params[i] = u*(bounds.Lo-bounds.Hi) + bounds.Hi
	}
	return params, nil
}

// LogPrior returns 0 when every parameter lies strictly inside its
// declared (lo, hi) range and -Inf otherwise.
func (m *Model) LogPrior(params []float64) (float64, error) {
	if len(params) != m.meta.InputSize-1 {
		return 0, fmt.Errorf("surrogate: %d parameters for %d physical dimensions",
			len(params), m.meta.InputSize-1)
	}

	for i, p := range params {
		bounds := m.meta.InputBounds[i]
		if p <= bounds.Lo || p >= bounds.Hi {
			return math.Inf(-1), nil
		}
	}
	return 0, nil
}

// LogProbability composes LogPrior and LogLikelihood, short-circuiting to
// -Inf without touching the decoder when the prior already rejects the
// point.
func (m *Model) LogProbability(params []float64) (float64, error) {
	prior, err := m.LogPrior(params)
	if err != nil {
		return 0, err
	}
	if math.IsInf(prior, -1) {
		return math.Inf(-1), nil
	}

	likelihood, err := m.LogLikelihood(params)
	if err != nil {
		return 0, err
	}
	return prior + likelihood, nil
}
