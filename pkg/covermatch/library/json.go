// Package library loads the reference track library from its backing
// stores: a JSON file or a SQLite database.
package library

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ryanseay/covermatch/pkg/covermatch"
)

// JSONLoader reads a reference library from a JSON file holding an array of
// tracks with artist, title, genre, lyrics, and audio_features. It
// implements covermatch.LibraryLoader.
type JSONLoader struct{}

// Load parses the JSON library file at path.
func (JSONLoader) Load(path string) ([]covermatch.ReferenceTrack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &covermatch.LibraryLoadError{Source: path, Err: err}
	}

	var tracks []covermatch.ReferenceTrack
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, &covermatch.LibraryLoadError{Source: path, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if len(tracks) == 0 {
		return nil, &covermatch.LibraryLoadError{Source: path, Err: fmt.Errorf("library file holds no tracks")}
	}

	return tracks, nil
}

// LoadLibrary is a convenience that loads and validates a library in one
// step using the given loader.
func LoadLibrary(loader covermatch.LibraryLoader, path string) (*covermatch.Library, error) {
	tracks, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return covermatch.NewLibrary(tracks)
}
