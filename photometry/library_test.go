package photometry

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFilterDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"sdss_g.dat": "# SDSS g\n4000 0.1\n4500 0.6\n5000 0.4\n5500 0.05\n",
		"sdss_r.dat": "5500 0.2\n6000 0.7\n6500 0.3\n",
		"notes.txt":  "not a filter profile\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadLibrary(t *testing.T) {
	library, err := LoadLibrary(writeFilterDir(t))
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}

	if library.Len() != 2 {
		t.Errorf("Len = %d, expected 2 (non-.dat files skipped)", library.Len())
	}
	if names := library.Names(); !reflect.DeepEqual(names, []string{"sdss_g", "sdss_r"}) {
		t.Errorf("Names = %v, expected [sdss_g sdss_r]", names)
	}

	curve, err := library.Get("sdss_g")
	if err != nil {
		t.Fatalf("Get(sdss_g) failed: %v", err)
	}
	if curve.Detector != Photon {
		t.Errorf("Detector = %s, expected photon", curve.Detector)
	}
	if curve.Wavelengths[0] != 4000 || curve.Transmission[1] != 0.6 {
		t.Errorf("profile not parsed correctly: %v %v", curve.Wavelengths, curve.Transmission)
	}
}

func TestGetUnknownFilter(t *testing.T) {
	library, err := LoadLibrary(writeFilterDir(t))
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}

	_, err = library.Get("johnson_v")
	if err == nil {
		t.Fatal("Get returned a filter that was never loaded")
	}
	if !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("error %v does not wrap ErrUnknownFilter", err)
	}
}

func TestLoadLibraryMissingDir(t *testing.T) {
	if _, err := LoadLibrary(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("LoadLibrary should fail for a missing directory")
	}
}

func TestLoadLibraryEmptyDir(t *testing.T) {
	if _, err := LoadLibrary(t.TempDir()); err == nil {
		t.Error("LoadLibrary should fail when no .dat profiles exist")
	}
}

func TestLoadLibraryMalformedProfile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.dat"), []byte("4000\n"), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}
	if _, err := LoadLibrary(dir); err == nil {
		t.Error("LoadLibrary accepted a one-column profile")
	}
}
