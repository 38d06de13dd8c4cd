package covermatch

import "fmt"

// DownloadError wraps a failure while fetching source audio.
type DownloadError struct {
	VideoID string
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed for %s: %v", e.VideoID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// FeatureExtractionError wraps a failure while computing audio features.
type FeatureExtractionError struct {
	Err error
}

func (e *FeatureExtractionError) Error() string {
	return fmt.Sprintf("feature extraction failed: %v", e.Err)
}

func (e *FeatureExtractionError) Unwrap() error { return e.Err }

// TranscriptionError wraps a failure while transcribing lyrics.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// LibraryLoadError wraps a failure while loading or validating the reference
// library. It is fatal at startup: the service cannot match without a library.
type LibraryLoadError struct {
	Source string
	Err    error
}

func (e *LibraryLoadError) Error() string {
	return fmt.Sprintf("library load failed (%s): %v", e.Source, e.Err)
}

func (e *LibraryLoadError) Unwrap() error { return e.Err }

// MatchingError reports that ranking itself could not produce a result,
// e.g. the library holds fewer than two tracks so no score gap exists.
type MatchingError struct {
	Reason string
}

func (e *MatchingError) Error() string {
	return fmt.Sprintf("matching failed: %s", e.Reason)
}
