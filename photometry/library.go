package photometry

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownFilter is wrapped by Library.Get when a filter name is not in
// the loaded library.
var ErrUnknownFilter = errors.New("unknown filter")

// FilterSuffix is the file extension of filter profiles in a library
// directory; the filter's lookup key is the filename with it stripped.
const FilterSuffix = ".dat"

// Library maps filter names to their transmission curves. Loaded once from
// a directory and immutable afterwards.
type Library struct {
	filters map[string]*FilterCurve
}

// LoadLibrary reads every *.dat file in dir as a two-column
// (wavelength angstrom, transmission) profile with the photon counting
// convention. File basenames minus the suffix become lookup keys.
func LoadLibrary(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter directory: %w", err)
	}

	library := &Library{filters: make(map[string]*FilterCurve)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FilterSuffix) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), FilterSuffix)
		wavelengths, transmission, err := readProfile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("filter profile %s: %w", entry.Name(), err)
		}

		curve, err := NewFilterCurve(name, wavelengths, transmission, Photon)
		if err != nil {
			return nil, err
		}
		library.filters[name] = curve
	}

	if len(library.filters) == 0 {
		return nil, fmt.Errorf("no %s filter profiles found in %s", FilterSuffix, dir)
	}
	return library, nil
}

// NewLibrary builds a library from already-constructed curves, for callers
// that assemble filters programmatically instead of from a directory.
func NewLibrary(curves ...*FilterCurve) *Library {
	library := &Library{filters: make(map[string]*FilterCurve, len(curves))}
	for _, curve := range curves {
		library.filters[curve.Name] = curve
	}
	return library
}

// Get looks a filter up by name.
func (l *Library) Get(name string) (*FilterCurve, error) {
	curve, ok := l.filters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return curve, nil
}

// Names lists the loaded filter names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.filters))
	for name := range l.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of loaded filters.
func (l *Library) Len() int {
	return len(l.filters)
}

// readProfile parses a whitespace-delimited two-column numeric file.
// Blank lines and '#' comments are skipped.
func readProfile(path string) ([]float64, []float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var wavelengths, transmission []float64
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: wavelength: %w", line, err)
		}
		t, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: transmission: %w", line, err)
		}
		wavelengths = append(wavelengths, w)
		transmission = append(transmission, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return wavelengths, transmission, nil
}
