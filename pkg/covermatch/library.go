package covermatch

import "fmt"

// Library is the immutable set of reference tracks a query is matched
// against. It is built once at startup and shared read-only across requests;
// no locking is needed because nothing mutates it after construction.
// Reloading means building a fresh Library and swapping the reference.
type Library struct {
	tracks []ReferenceTrack
}

// NewLibrary validates and wraps a set of reference tracks. Every track must
// carry an artist, a title, and non-empty feature vectors, and each feature
// channel must have the same dimensionality across the whole library.
// Violations return a *LibraryLoadError.
func NewLibrary(tracks []ReferenceTrack) (*Library, error) {
	if len(tracks) == 0 {
		return nil, &LibraryLoadError{Source: "memory", Err: fmt.Errorf("library is empty")}
	}

	ref := tracks[0].Features
	for i, t := range tracks {
		if t.Artist == "" || t.Title == "" {
			return nil, &LibraryLoadError{
				Source: "memory",
				Err:    fmt.Errorf("track %d is missing artist or title", i),
			}
		}
		if err := checkDimensions(t, ref, i); err != nil {
			return nil, &LibraryLoadError{Source: "memory", Err: err}
		}
	}

	owned := make([]ReferenceTrack, len(tracks))
	copy(owned, tracks)
	return &Library{tracks: owned}, nil
}

func checkDimensions(t ReferenceTrack, ref AudioFeatures, idx int) error {
	channels := []struct {
		name string
		got  int
		want int
	}{
		{"chroma_stft_mean", len(t.Features.ChromaSTFT), len(ref.ChromaSTFT)},
		{"chroma_cqt_mean", len(t.Features.ChromaCQT), len(ref.ChromaCQT)},
		{"tonnetz_mean", len(t.Features.Tonnetz), len(ref.Tonnetz)},
		{"spectral_contrast_mean", len(t.Features.SpectralContrast), len(ref.SpectralContrast)},
	}
	for _, c := range channels {
		if c.want == 0 {
			return fmt.Errorf("track 0 has empty %s vector", c.name)
		}
		if c.got != c.want {
			return fmt.Errorf("track %d (%s - %s): %s has %d values, library uses %d",
				idx, t.Artist, t.Title, c.name, c.got, c.want)
		}
	}
	return nil
}

// Tracks returns the reference tracks in load order. The slice is a copy;
// callers cannot mutate library state through it.
func (l *Library) Tracks() []ReferenceTrack {
	out := make([]ReferenceTrack, len(l.tracks))
	copy(out, l.tracks)
	return out
}

// Len reports the number of reference tracks.
func (l *Library) Len() int { return len(l.tracks) }
