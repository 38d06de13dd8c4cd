package covermatch

// AudioFeatures is the four-channel harmonic feature set extracted from a
// recording. All vectors are frame-wise means, so each channel is a single
// fixed-length vector. Channel lengths must agree across every track in a
// library (and with the query) for similarity to be defined.
type AudioFeatures struct {
	ChromaSTFT       []float64 `json:"chroma_stft_mean"`
	ChromaCQT        []float64 `json:"chroma_cqt_mean"`
	Tonnetz          []float64 `json:"tonnetz_mean"`
	SpectralContrast []float64 `json:"spectral_contrast_mean"`
}

// ReferenceTrack is one studio recording in the reference library.
// Immutable once loaded.
type ReferenceTrack struct {
	Artist   string        `json:"artist"`
	Title    string        `json:"title"`
	Genre    string        `json:"genre,omitempty"`
	Lyrics   string        `json:"lyrics"`
	Features AudioFeatures `json:"audio_features"`
}

// QuerySample is the per-request input to matching: one transcript and one
// audio feature set, produced by the pipeline for a single run.
type QuerySample struct {
	Transcript string
	Features   AudioFeatures
}

// SimilarityScore holds the component and fused scores for one
// (query, reference) pair. All values are in [0, 1].
type SimilarityScore struct {
	AudioSim  float64 `json:"audioSim"`
	LyricsSim float64 `json:"lyricsSim"`
	Combined  float64 `json:"combinedScore"`
}

// TrackScore pairs a reference track's identity with its similarity scores,
// as it appears in a ranked result list.
type TrackScore struct {
	Artist    string  `json:"artist"`
	Title     string  `json:"title"`
	AudioSim  float64 `json:"audioSim"`
	LyricsSim float64 `json:"lyricsSim"`
	Combined  float64 `json:"combinedScore"`
}

// Confidence is the discrete trust tier assigned to the top match, derived
// solely from the gap between the first and second ranked candidates.
type Confidence string

const (
	ConfidenceHigh     Confidence = "HIGH"     // gap >= 0.20
	ConfidenceModerate Confidence = "MODERATE" // gap >= 0.10
	ConfidenceLow      Confidence = "LOW"      // gap >= 0.05
	ConfidenceVeryLow  Confidence = "VERY_LOW" // gap < 0.05
)

// MatchResult is the outcome of ranking one query against the full library.
type MatchResult struct {
	Match      ReferenceTrack
	Confidence Confidence
	Score      SimilarityScore
	Gap        float64
	Top5       []TrackScore
}
