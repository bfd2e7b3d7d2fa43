package observations

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewValidSet(t *testing.T) {
	set, err := New(
		[]float64{1.0, 1.0, 2.5},
		[]string{"sdss_r", "sdss_g", "sdss_r"},
		[]float64{19.2, 19.8, 20.4},
		[]float64{0.1, 0.2, 0.3},
		[]int{2},
		1.2e26,
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if set.Len() != 3 {
		t.Errorf("Len = %d, expected 3", set.Len())
	}
	if !reflect.DeepEqual(set.FiltersUnique(), []string{"sdss_g", "sdss_r"}) {
		t.Errorf("FiltersUnique = %v, expected sorted unique labels", set.FiltersUnique())
	}
}

func TestNewRejectsInvalidSets(t *testing.T) {
	times := []float64{1, 2}
	filters := []string{"g", "r"}
	mags := []float64{19, 20}
	errs := []float64{0.1, 0.1}

	tests := []struct {
		name string
		call func() (*Set, error)
	}{
		{"empty", func() (*Set, error) {
			return New(nil, nil, nil, nil, nil, 1e26)
		}},
		{"length mismatch", func() (*Set, error) {
			return New(times, filters[:1], mags, errs, nil, 1e26)
		}},
		{"zero distance", func() (*Set, error) {
			return New(times, filters, mags, errs, nil, 0)
		}},
		{"upper limit out of range", func() (*Set, error) {
			return New(times, filters, mags, errs, []int{5}, 1e26)
		}},
		{"empty filter label", func() (*Set, error) {
			return New(times, []string{"g", ""}, mags, errs, nil, 1e26)
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := test.call(); err == nil {
				t.Errorf("New accepted %s", test.name)
			}
		})
	}
}

func TestLoadCSV(t *testing.T) {
	content := "time,filter,magnitude,magnitude_error,upper_limit\n" +
		"1.0,sdss_g,19.8,0.2,0\n" +
		"1.0,sdss_r,19.2,0.1,0\n" +
		"4.5,sdss_r,21.0,0.0,1\n"
	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	set, err := LoadCSV(path, 1.2e26)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if set.Len() != 3 {
		t.Fatalf("Len = %d, expected 3", set.Len())
	}
	if set.Times[2] != 4.5 || set.Filters[2] != "sdss_r" {
		t.Errorf("row 2 = (%g, %s), expected (4.5, sdss_r)", set.Times[2], set.Filters[2])
	}
	if !reflect.DeepEqual(set.UpperLimitIndices, []int{2}) {
		t.Errorf("UpperLimitIndices = %v, expected [2]", set.UpperLimitIndices)
	}
	if set.Distance != 1.2e26 {
		t.Errorf("Distance = %g, expected 1.2e26", set.Distance)
	}
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	content := "1.0,sdss_g,19.8,0.2,0\n2.0,sdss_g,20.1,0.3,0\n"
	path := filepath.Join(t.TempDir(), "obs.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	set, err := LoadCSV(path, 1e26)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("Len = %d, expected 2", set.Len())
	}
}

func TestLoadCSVRejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad upper limit", "1.0,g,19.0,0.1,maybe\n"},
		{"bad magnitude", "1.0,g,bright,0.1,0\n"},
		{"empty file", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "obs.csv")
			if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
				t.Fatalf("failed to write csv: %v", err)
			}
			if _, err := LoadCSV(path, 1e26); err == nil {
				t.Errorf("LoadCSV accepted %s", test.name)
			}
		})
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), 1e26); err == nil {
		t.Error("LoadCSV should fail for a missing file")
	}
}
