package observations

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads an observation table with columns
// time,filter,magnitude,magnitude_error,upper_limit where upper_limit is 0
// or 1. A header row is skipped when the first field is not numeric. The
// distance is supplied separately, in centimetres.
func LoadCSV(path string, distance float64) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open observations file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse observations file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("observations file %s is empty", path)
	}

	// Skip a header row if present.
	start := 0
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		start = 1
	}

	var (
		times, magnitudes, magnitudeErrors []float64
		filters                            []string
		upperLimitIndices                  []int
	)
	for i, record := range records[start:] {
		line := start + i + 1
		if len(record) < 5 {
			return nil, fmt.Errorf("observations file %s line %d: expected 5 columns, got %d",
				path, line, len(record))
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("observations file %s line %d: time: %w", path, line, err)
		}
		mag, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("observations file %s line %d: magnitude: %w", path, line, err)
		}
		magErr, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("observations file %s line %d: magnitude_error: %w", path, line, err)
		}
		limit := strings.TrimSpace(record[4])
		switch limit {
		case "0":
		case "1":
			upperLimitIndices = append(upperLimitIndices, i)
		default:
			return nil, fmt.Errorf("observations file %s line %d: upper_limit must be 0 or 1, got %q",
				path, line, limit)
		}

		times = append(times, t)
		filters = append(filters, strings.TrimSpace(record[1]))
		magnitudes = append(magnitudes, mag)
		magnitudeErrors = append(magnitudeErrors, magErr)
	}

	return New(times, filters, magnitudes, magnitudeErrors, upperLimitIndices, distance)
}
