package metadata

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// WavelengthStyle names the closed-form wavelength grid a model family was
// trained on. The grid is resolved into an array once at load time; nothing
// downstream branches on the style except the input-transform override table.
type WavelengthStyle int

const (
	StyleUnknown WavelengthStyle = iota
	StyleBulla
	StyleKasen
)

func (s WavelengthStyle) String() string {
	switch s {
	case StyleBulla:
		return "bulla"
	case StyleKasen:
		return "kasen"
	default:
		return "unknown"
	}
}

// ParseStyle maps the metadata string enum to a style.
func ParseStyle(name string) (WavelengthStyle, error) {
	switch name {
	case "bulla":
		return StyleBulla, nil
	case "kasen":
		return StyleKasen, nil
	default:
		return StyleUnknown, fmt.Errorf("metadata: unrecognized wavelengths_style %q", name)
	}
}

const (
	bullaBins    = 500
	bullaStartAA = 100.0
	bullaStopAA  = 99900.0

	kasenBins    = 1629
	kasenStartAA = 1.0e3
	kasenStopAA  = 1.28e6
)

// Grid produces the fixed ascending wavelength array for the style, in
// angstrom.
func (s WavelengthStyle) Grid() []float64 {
	switch s {
	case StyleBulla:
		return floats.Span(make([]float64, bullaBins), bullaStartAA, bullaStopAA)
	case StyleKasen:
		return floats.LogSpan(make([]float64, kasenBins), kasenStartAA, kasenStopAA)
	default:
		return nil
	}
}

// readColumns parses a whitespace-delimited numeric text file into n columns.
// Blank lines and '#' comments are skipped.
func readColumns(path string, n int) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	columns := make([][]float64, n)
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < n {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, n, len(fields))
		}
		for i := 0; i < n; i++ {
			value, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %d: %w", line, i+1, err)
			}
			columns[i] = append(columns[i], value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}
