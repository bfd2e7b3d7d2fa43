// Package photometry integrates synthetic spectra against filter
// transmission curves and converts photon fluxes to AB magnitudes.
package photometry

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
)

// DetectorType is the counting convention of a filter: photon counters
// weight the integrand by wavelength, energy integrators do not.
type DetectorType int

const (
	Photon DetectorType = iota
	Energy
)

func (d DetectorType) String() string {
	switch d {
	case Photon:
		return "photon"
	case Energy:
		return "energy"
	default:
		return "unknown"
	}
}

// Speed of light in angstrom per second.
const speedOfLightAA = 2.99792458e18

// AB reference flux density, erg/s/cm^2/Hz.
const abZeroFluxNu = 3.631e-20

// FilterCurve is one filter transmission profile with its precomputed
// pivot wavelength and AB zero point. Immutable after construction.
type FilterCurve struct {
	Name         string
	Wavelengths  []float64 // angstrom, ascending
	Transmission []float64
	Detector     DetectorType

	predictor interp.PiecewiseLinear
	pivot2    float64
	abZeroMag float64
}

// NewFilterCurve validates the transmission profile and precomputes the
// pivot wavelength and AB zero-point magnitude.
func NewFilterCurve(name string, wavelengths, transmission []float64, detector DetectorType) (*FilterCurve, error) {
	if name == "" {
		return nil, fmt.Errorf("photometry: filter name must not be empty")
	}
	if len(wavelengths) != len(transmission) {
		return nil, fmt.Errorf("photometry: filter %s has %d wavelengths but %d transmission values",
			name, len(wavelengths), len(transmission))
	}
	if len(wavelengths) < 2 {
		return nil, fmt.Errorf("photometry: filter %s needs at least 2 samples, got %d", name, len(wavelengths))
	}
	if !sort.Float64sAreSorted(wavelengths) {
		return nil, fmt.Errorf("photometry: filter %s wavelengths are not ascending", name)
	}
	for i, t := range transmission {
		if t < 0 {
			return nil, fmt.Errorf("photometry: filter %s has negative transmission %g at index %d", name, t, i)
		}
	}

	curve := &FilterCurve{
		Name:         name,
		Wavelengths:  wavelengths,
		Transmission: transmission,
		Detector:     detector,
	}
	if err := curve.predictor.Fit(wavelengths, transmission); err != nil {
		return nil, fmt.Errorf("photometry: filter %s: %v", name, err)
	}

	curve.pivot2 = curve.pivotSquared()
	if curve.pivot2 <= 0 {
		return nil, fmt.Errorf("photometry: filter %s has zero effective transmission", name)
	}
	curve.abZeroMag = -2.5 * math.Log10(abZeroFluxNu*speedOfLightAA/curve.pivot2)

	return curve, nil
}

// pivotSquared computes the squared pivot wavelength on the filter's own
// grid, using the detector convention.
func (fc *FilterCurve) pivotSquared() float64 {
	n := len(fc.Wavelengths)
	numerator := make([]float64, n)
	denominator := make([]float64, n)

	for i, w := range fc.Wavelengths {
		t := fc.Transmission[i]
		switch fc.Detector {
		case Photon:
			numerator[i] = t * w
			denominator[i] = t / w
		default: // Energy
			numerator[i] = t
			denominator[i] = t / (w * w)
		}
	}

	den := integrate.Trapezoidal(fc.Wavelengths, denominator)
	if den == 0 {
		return 0
	}
	return integrate.Trapezoidal(fc.Wavelengths, numerator) / den
}

// PivotWavelength is the pivot wavelength in angstrom.
func (fc *FilterCurve) PivotWavelength() float64 {
	return math.Sqrt(fc.pivot2)
}

// ABZeroMag is the AB zero-point magnitude for flux densities per
// wavelength: mag = -2.5*log10(flux) - ABZeroMag.
func (fc *FilterCurve) ABZeroMag() float64 {
	return fc.abZeroMag
}

// transmissionAt resamples the filter transmission onto an arbitrary
// wavelength, zero outside the filter's support.
func (fc *FilterCurve) transmissionAt(wavelength float64) float64 {
	if wavelength < fc.Wavelengths[0] || wavelength > fc.Wavelengths[len(fc.Wavelengths)-1] {
		return 0
	}
	return fc.predictor.Predict(wavelength)
}

// Flux computes the transmission-weighted mean flux density of a spectrum
// sampled on the given wavelength grid. The spectrum is a flux density per
// wavelength; the result is in the same units.
func (fc *FilterCurve) Flux(wavelengths, spectrum []float64) (float64, error) {
	if len(wavelengths) != len(spectrum) {
		return 0, fmt.Errorf("photometry: filter %s: %d wavelengths but %d flux values",
			fc.Name, len(wavelengths), len(spectrum))
	}
	if len(wavelengths) < 2 {
		return 0, fmt.Errorf("photometry: filter %s: spectrum needs at least 2 bins", fc.Name)
	}

	numerator := make([]float64, len(wavelengths))
	denominator := make([]float64, len(wavelengths))
	for i, w := range wavelengths {
		t := fc.transmissionAt(w)
		weight := t
		if fc.Detector == Photon {
			weight = t * w
		}
		numerator[i] = weight * spectrum[i]
		denominator[i] = weight
	}

	den := integrate.Trapezoidal(wavelengths, denominator)
	if den <= 0 {
		return 0, fmt.Errorf("photometry: filter %s does not overlap the spectrum grid", fc.Name)
	}
	return integrate.Trapezoidal(wavelengths, numerator) / den, nil
}

// Magnitude converts a band flux to an AB magnitude. NaN fluxes propagate
// as NaN magnitudes; non-positive fluxes produce +Inf or NaN per math.Log10.
func (fc *FilterCurve) Magnitude(flux float64) float64 {
	return -2.5*math.Log10(flux) - fc.abZeroMag
}
