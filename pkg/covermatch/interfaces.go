package covermatch

import "context"

// Downloader fetches the source audio for a video ID and returns the local
// path of the downloaded file along with the video title.
// Failures are reported as *DownloadError.
type Downloader interface {
	Fetch(ctx context.Context, videoID string) (audioPath string, title string, err error)
}

// FeatureExtractor converts a downloaded audio file into the four-channel
// harmonic feature set. Failures are reported as *FeatureExtractionError.
type FeatureExtractor interface {
	Extract(ctx context.Context, audioPath string) (AudioFeatures, error)
}

// Transcriber produces a plain-text transcript of the sung lyrics in an audio
// file. Failures are reported as *TranscriptionError.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// LibraryLoader reads a set of reference tracks from a backing source.
// Failures are reported as *LibraryLoadError.
type LibraryLoader interface {
	Load(path string) ([]ReferenceTrack, error)
}

// Logger is the minimal logging contract the core depends on. The zap-backed
// logger in pkg/logger satisfies it, as does any *zap.SugaredLogger.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
