package covermatch

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Fusion weights. Lyrics dominate: transcripts survive cover arrangements
// (tempo changes, live noise, reharmonization) far better than raw audio
// features do.
const (
	audioWeight  = 0.30
	lyricsWeight = 0.70
)

// Per-channel audio weights. Must sum to 1.0.
const (
	chromaSTFTWeight       = 0.30
	chromaCQTWeight        = 0.35
	tonnetzWeight          = 0.25
	spectralContrastWeight = 0.10
)

// tokenize normalizes a transcript into a set of lowercase words with
// punctuation stripped. Duplicates collapse and order is discarded.
func tokenize(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// TextSimilarity computes the Jaccard index over the word sets of two
// transcripts: |intersection| / |union|. It is symmetric and bounded to
// [0, 1]. If either side has no words the result is 0 — an empty transcript
// is a non-match, not a vacuous perfect match.
func TextSimilarity(a, b string) float64 {
	setA := tokenize(a)
	setB := tokenize(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// cosineSimilarity computes the cosine of the angle between two equal-length
// vectors, clamped to [0, 1]. Negative correlation carries no evidence of a
// match, so it maps to 0. A zero-norm vector yields 0.
//
// A length mismatch means the library and query were produced by different
// extractor configurations. That is a data integrity bug, not a runtime
// input condition, so it panics.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("covermatch: feature vector length mismatch: %d vs %d", len(a), len(b)))
	}
	if len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0.0
	}
	if cos > 1 {
		// Floating point can push slightly past 1 for near-identical vectors.
		return 1.0
	}
	return cos
}

// AudioSimilarity computes the weighted harmonic similarity between two
// audio feature sets. Weights emphasize pitch-based channels:
// 30% chroma STFT, 35% chroma CQT, 25% tonnetz, 10% spectral contrast.
// The result is in [0, 1].
func AudioSimilarity(q, r AudioFeatures) float64 {
	return chromaSTFTWeight*cosineSimilarity(q.ChromaSTFT, r.ChromaSTFT) +
		chromaCQTWeight*cosineSimilarity(q.ChromaCQT, r.ChromaCQT) +
		tonnetzWeight*cosineSimilarity(q.Tonnetz, r.Tonnetz) +
		spectralContrastWeight*cosineSimilarity(q.SpectralContrast, r.SpectralContrast)
}

// CombinedScore fuses the audio and lyrics similarities with the fixed
// 30/70 weighting.
func CombinedScore(audioSim, lyricsSim float64) float64 {
	return audioWeight*audioSim + lyricsWeight*lyricsSim
}

// Score computes the full SimilarityScore for one (query, reference) pair.
func Score(query QuerySample, ref ReferenceTrack) SimilarityScore {
	audioSim := AudioSimilarity(query.Features, ref.Features)
	lyricsSim := TextSimilarity(query.Transcript, ref.Lyrics)
	return SimilarityScore{
		AudioSim:  audioSim,
		LyricsSim: lyricsSim,
		Combined:  CombinedScore(audioSim, lyricsSim),
	}
}
