package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ryanseay/covermatch/pkg/covermatch"
)

const validLibraryJSON = `[
  {
    "artist": "First Artist",
    "title": "First Song",
    "genre": "pop",
    "lyrics": "hello world again",
    "audio_features": {
      "chroma_stft_mean": [0.1, 0.2, 0.3],
      "chroma_cqt_mean": [0.4, 0.5, 0.6],
      "tonnetz_mean": [0.1, -0.1],
      "spectral_contrast_mean": [2.0, 3.0]
    }
  },
  {
    "artist": "Second Artist",
    "title": "Second Song",
    "lyrics": "different words entirely",
    "audio_features": {
      "chroma_stft_mean": [0.9, 0.8, 0.7],
      "chroma_cqt_mean": [0.6, 0.5, 0.4],
      "tonnetz_mean": [-0.2, 0.2],
      "spectral_contrast_mean": [1.0, 4.0]
    }
  }
]`

func writeLibraryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write library file: %v", err)
	}
	return path
}

func TestJSONLoaderLoad(t *testing.T) {
	path := writeLibraryFile(t, validLibraryJSON)

	tracks, err := JSONLoader{}.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].Artist != "First Artist" || tracks[0].Title != "First Song" {
		t.Errorf("Unexpected first track identity: %s - %s", tracks[0].Artist, tracks[0].Title)
	}
	if tracks[0].Genre != "pop" {
		t.Errorf("Expected genre pop, got %q", tracks[0].Genre)
	}
	if len(tracks[0].Features.ChromaSTFT) != 3 {
		t.Errorf("Expected 3 chroma STFT values, got %d", len(tracks[0].Features.ChromaSTFT))
	}
	if tracks[1].Features.Tonnetz[0] != -0.2 {
		t.Errorf("Expected tonnetz[0] = -0.2, got %f", tracks[1].Features.Tonnetz[0])
	}
}

func TestJSONLoaderMissingFile(t *testing.T) {
	_, err := JSONLoader{}.Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	var loadErr *covermatch.LibraryLoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Expected *LibraryLoadError, got %T", err)
	}
}

func TestJSONLoaderInvalidJSON(t *testing.T) {
	path := writeLibraryFile(t, `{"not": "an array"`)

	var loadErr *covermatch.LibraryLoadError
	if _, err := (JSONLoader{}).Load(path); !errors.As(err, &loadErr) {
		t.Errorf("Expected *LibraryLoadError for invalid JSON, got %v", err)
	}
}

func TestJSONLoaderEmptyLibrary(t *testing.T) {
	path := writeLibraryFile(t, `[]`)

	if _, err := (JSONLoader{}).Load(path); err == nil {
		t.Error("Expected error for empty library file")
	}
}

func TestLoadLibrary(t *testing.T) {
	path := writeLibraryFile(t, validLibraryJSON)

	lib, err := LoadLibrary(JSONLoader{}, path)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}
	if lib.Len() != 2 {
		t.Errorf("Expected 2 tracks in library, got %d", lib.Len())
	}
}

func TestLoadLibraryValidationFailure(t *testing.T) {
	// Structurally valid JSON whose tracks fail library validation.
	path := writeLibraryFile(t, `[
	  {"artist": "", "title": "No Artist", "lyrics": "x",
	   "audio_features": {"chroma_stft_mean": [0.1], "chroma_cqt_mean": [0.1],
	     "tonnetz_mean": [0.1], "spectral_contrast_mean": [0.1]}}
	]`)

	if _, err := LoadLibrary(JSONLoader{}, path); err == nil {
		t.Error("Expected validation error from LoadLibrary")
	}
}
