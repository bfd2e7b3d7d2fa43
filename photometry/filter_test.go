package photometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// boxcar builds a top-hat filter with unit transmission on [lo, hi].
func boxcar(t *testing.T, lo, hi float64, samples int) *FilterCurve {
	t.Helper()
	wavelengths := floats.Span(make([]float64, samples), lo, hi)
	transmission := make([]float64, samples)
	for i := range transmission {
		transmission[i] = 1.0
	}
	curve, err := NewFilterCurve("box", wavelengths, transmission, Photon)
	if err != nil {
		t.Fatalf("NewFilterCurve failed: %v", err)
	}
	return curve
}

func TestDetectorTypeString(t *testing.T) {
	tests := []struct {
		detector DetectorType
		expected string
	}{
		{Photon, "photon"},
		{Energy, "energy"},
		{DetectorType(9), "unknown"},
	}
	for _, test := range tests {
		if got := test.detector.String(); got != test.expected {
			t.Errorf("DetectorType.String() = %s, expected %s", got, test.expected)
		}
	}
}

func TestNewFilterCurveValidation(t *testing.T) {
	tests := []struct {
		name         string
		filterName   string
		wavelengths  []float64
		transmission []float64
	}{
		{"empty name", "", []float64{1, 2}, []float64{1, 1}},
		{"length mismatch", "f", []float64{1, 2, 3}, []float64{1, 1}},
		{"too short", "f", []float64{1}, []float64{1}},
		{"not ascending", "f", []float64{3, 2, 1}, []float64{1, 1, 1}},
		{"negative transmission", "f", []float64{1, 2, 3}, []float64{1, -0.1, 1}},
		{"all zero transmission", "f", []float64{1, 2, 3}, []float64{0, 0, 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewFilterCurve(test.filterName, test.wavelengths, test.transmission, Photon); err == nil {
				t.Errorf("NewFilterCurve accepted %s", test.name)
			}
		})
	}
}

func TestBoxcarPivotWavelength(t *testing.T) {
	lo, hi := 4000.0, 6000.0
	curve := boxcar(t, lo, hi, 2001)

	// Photon convention closed form for a unit boxcar:
	// lpivot^2 = ((hi^2 - lo^2)/2) / ln(hi/lo)
	expected := math.Sqrt((hi*hi - lo*lo) / 2.0 / math.Log(hi/lo))
	if got := curve.PivotWavelength(); math.Abs(got-expected) > 1.0 {
		t.Errorf("PivotWavelength = %g, expected %g", got, expected)
	}
}

func TestFluxOfConstantSpectrum(t *testing.T) {
	curve := boxcar(t, 4000, 6000, 501)

	wavelengths := floats.Span(make([]float64, 3001), 1000, 10000)
	spectrum := make([]float64, len(wavelengths))
	for i := range spectrum {
		spectrum[i] = 7.5e-12
	}

	flux, err := curve.Flux(wavelengths, spectrum)
	if err != nil {
		t.Fatalf("Flux failed: %v", err)
	}
	// Transmission-weighted mean of a constant is the constant.
	if math.Abs(flux-7.5e-12) > 1e-14 {
		t.Errorf("Flux = %g, expected 7.5e-12", flux)
	}
}

func TestABReferenceSpectrumIsMagnitudeZero(t *testing.T) {
	curve := boxcar(t, 4000, 6000, 2001)

	// A source with constant f_nu = 3631 Jy has AB magnitude zero in every
	// band. In per-wavelength units that is f_lam = f_nu * c / lambda^2.
	wavelengths := floats.Span(make([]float64, 10001), 3000, 8000)
	spectrum := make([]float64, len(wavelengths))
	for i, w := range wavelengths {
		spectrum[i] = abZeroFluxNu * speedOfLightAA / (w * w)
	}

	flux, err := curve.Flux(wavelengths, spectrum)
	if err != nil {
		t.Fatalf("Flux failed: %v", err)
	}
	if mag := curve.Magnitude(flux); math.Abs(mag) > 1e-3 {
		t.Errorf("AB reference magnitude = %g, expected ~0", mag)
	}
}

func TestFluxNoOverlap(t *testing.T) {
	curve := boxcar(t, 4000, 6000, 101)

	wavelengths := floats.Span(make([]float64, 101), 10000, 20000)
	spectrum := make([]float64, len(wavelengths))
	for i := range spectrum {
		spectrum[i] = 1.0
	}

	if _, err := curve.Flux(wavelengths, spectrum); err == nil {
		t.Error("Flux succeeded for a filter outside the spectrum grid")
	}
}

func TestFluxLengthMismatch(t *testing.T) {
	curve := boxcar(t, 4000, 6000, 101)
	if _, err := curve.Flux([]float64{4000, 5000}, []float64{1}); err == nil {
		t.Error("Flux accepted mismatched wavelength/flux lengths")
	}
}

func TestNaNFluxPropagatesToMagnitude(t *testing.T) {
	curve := boxcar(t, 4000, 6000, 101)

	wavelengths := floats.Span(make([]float64, 201), 3000, 8000)
	spectrum := make([]float64, len(wavelengths))
	for i := range spectrum {
		spectrum[i] = 1e-12
	}
	spectrum[100] = math.NaN()

	flux, err := curve.Flux(wavelengths, spectrum)
	if err != nil {
		t.Fatalf("Flux failed: %v", err)
	}
	if !math.IsNaN(flux) {
		t.Fatalf("Flux = %g, expected NaN to propagate", flux)
	}
	if !math.IsNaN(curve.Magnitude(flux)) {
		t.Error("Magnitude of NaN flux is not NaN")
	}
}

func TestMagnitudeOfNonPositiveFlux(t *testing.T) {
	curve := boxcar(t, 4000, 6000, 101)
	if !math.IsInf(curve.Magnitude(0), 1) {
		t.Error("Magnitude(0) should be +Inf")
	}
	if !math.IsNaN(curve.Magnitude(-1)) {
		t.Error("Magnitude(-1) should be NaN")
	}
}
