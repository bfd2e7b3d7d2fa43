package surrogate

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// PredictSpectra decodes one synthetic spectrum per unique requested time.
// Times are deduplicated first so repeated timestamps (many filters
// observing the same epoch) cost a single network evaluation. Returns the
// spectra in physical flux-density units (erg/s/Hz, one row per unique
// time) and the sorted unique times.
func (m *Model) PredictSpectra(params []float64, times []float64) (*mat.Dense, []float64, error) {
	if len(params) != m.meta.InputSize-1 {
		return nil, nil, fmt.Errorf("surrogate: %d physical parameters for input size %d (expected %d plus time)",
			len(params), m.meta.InputSize, m.meta.InputSize-1)
	}
	if len(times) == 0 {
		return nil, nil, fmt.Errorf("surrogate: no prediction times given")
	}

	uniqueTimes := uniqueSorted(times)

	batch := mat.NewDense(len(uniqueTimes), m.meta.InputSize, nil)
	for i, t := range uniqueTimes {
		for j, p := range params {
			batch.Set(i, j, p)
		}
		batch.Set(i, m.meta.InputSize-1, t)
	}

	raw, err := m.decoder.Decode(m.NormalizeInputs(batch))
	if err != nil {
		return nil, nil, err
	}
	rows, cols := raw.Dims()
	if rows != len(uniqueTimes) || cols != m.meta.SpectrumSize() {
		return nil, nil, fmt.Errorf("surrogate: decoder returned shape (%d, %d), expected (%d, %d)",
			rows, cols, len(uniqueTimes), m.meta.SpectrumSize())
	}

	return m.SpectraToRealUnits(raw), uniqueTimes, nil
}

// PredictMagnitudes predicts apparent AB magnitudes aligned index by index
// with the requested times and filters. With nil times the bound
// observation set supplies times, filters and distance; otherwise the
// explicit triple is used. Exactly one source must be available.
func (m *Model) PredictMagnitudes(params []float64, times []float64, filters []string, distance float64) ([]float64, error) {
	if times == nil {
		if m.obs == nil {
			return nil, ErrNoPredictionInputs
		}
		times = m.obs.Times
		filters = m.obs.Filters
		distance = m.obs.Distance
	}

	if m.filters == nil {
		return nil, ErrFiltersNotLoaded
	}
	if len(filters) != len(times) {
		return nil, fmt.Errorf("surrogate: %d filters for %d times", len(filters), len(times))
	}
	if distance <= 0 {
		return nil, fmt.Errorf("surrogate: distance must be positive, got %g", distance)
	}

	spectra, uniqueTimes, err := m.PredictSpectra(params, times)
	if err != nil {
		return nil, err
	}

	// Inverse-square dimming to the observed flux at the source distance.
	dimming := 4 * math.Pi * distance * distance

	magnitudes := make([]float64, len(times))
	row := make([]float64, m.meta.SpectrumSize())

	for _, name := range uniqueStrings(filters) {
		curve, err := m.filters.Get(name)
		if err != nil {
			return nil, err
		}

		for idx, filter := range filters {
			if filter != name {
				continue
			}
			at := sort.SearchFloat64s(uniqueTimes, times[idx])
			mat.Row(row, at, spectra)
			for k := range row {
				row[k] /= dimming
			}

			flux, err := curve.Flux(m.meta.Wavelengths, row)
			if err != nil {
				return nil, err
			}
			magnitudes[idx] = curve.Magnitude(flux)
		}
	}

	return magnitudes, nil
}

// uniqueSorted returns the sorted distinct values of xs.
func uniqueSorted(xs []float64) []float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	unique := sorted[:1]
	for _, x := range sorted[1:] {
		if x != unique[len(unique)-1] {
			unique = append(unique, x)
		}
	}
	return unique
}

// uniqueStrings returns the sorted distinct values of ss.
func uniqueStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	var unique []string
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			unique = append(unique, s)
		}
	}
	sort.Strings(unique)
	return unique
}
