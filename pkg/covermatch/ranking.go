package covermatch

import "sort"

// Confidence tier boundaries on the top-1/top-2 score gap. Each boundary is
// inclusive on its lower edge.
const (
	highGap     = 0.20
	moderateGap = 0.10
	lowGap      = 0.05
)

const topN = 5

// ClassifyGap maps a score gap to its confidence tier.
func ClassifyGap(gap float64) Confidence {
	switch {
	case gap >= highGap:
		return ConfidenceHigh
	case gap >= moderateGap:
		return ConfidenceModerate
	case gap >= lowGap:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// Rank scores a query sample against every track in the library, orders the
// candidates by combined score descending (ties keep library order), and
// derives the confidence tier from the gap between the first and second
// ranked candidates.
//
// A library with fewer than two tracks has no defined gap; Rank returns a
// *MatchingError rather than inventing a tier. VERY_LOW results are still
// returned — suppressing them is the caller's policy, not the core's.
func Rank(query QuerySample, lib *Library) (*MatchResult, error) {
	if lib == nil || lib.Len() == 0 {
		return nil, &MatchingError{Reason: "reference library is empty"}
	}
	if lib.Len() < 2 {
		return nil, &MatchingError{Reason: "reference library has fewer than 2 tracks; score gap is undefined"}
	}

	type candidate struct {
		track ReferenceTrack
		score SimilarityScore
	}

	candidates := make([]candidate, 0, lib.Len())
	for _, track := range lib.tracks {
		candidates = append(candidates, candidate{track: track, score: Score(query, track)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score.Combined > candidates[j].score.Combined
	})

	n := topN
	if len(candidates) < n {
		n = len(candidates)
	}
	top := make([]TrackScore, n)
	for i := 0; i < n; i++ {
		top[i] = TrackScore{
			Artist:    candidates[i].track.Artist,
			Title:     candidates[i].track.Title,
			AudioSim:  candidates[i].score.AudioSim,
			LyricsSim: candidates[i].score.LyricsSim,
			Combined:  candidates[i].score.Combined,
		}
	}

	gap := candidates[0].score.Combined - candidates[1].score.Combined

	return &MatchResult{
		Match:      candidates[0].track,
		Confidence: ClassifyGap(gap),
		Score:      candidates[0].score,
		Gap:        gap,
		Top5:       top,
	}, nil
}
