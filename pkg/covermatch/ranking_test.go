package covermatch

import (
	"errors"
	"reflect"
	"testing"
)

// sameFeatures builds a feature set every test track shares, so combined
// scores are driven entirely by lyrics.
func sameFeatures() AudioFeatures {
	return AudioFeatures{
		ChromaSTFT:       []float64{0.5, 0.5, 0.5},
		ChromaCQT:        []float64{0.4, 0.6, 0.2},
		Tonnetz:          []float64{0.1, -0.2},
		SpectralContrast: []float64{2, 3},
	}
}

func testTrack(artist, title, lyrics string) ReferenceTrack {
	return ReferenceTrack{Artist: artist, Title: title, Lyrics: lyrics, Features: sameFeatures()}
}

func mustLibrary(t *testing.T, tracks ...ReferenceTrack) *Library {
	t.Helper()
	lib, err := NewLibrary(tracks)
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}
	return lib
}

func TestClassifyGapBoundaries(t *testing.T) {
	cases := []struct {
		gap  float64
		want Confidence
	}{
		{0.25, ConfidenceHigh},
		{0.20, ConfidenceHigh}, // lower edge inclusive
		{0.1999, ConfidenceModerate},
		{0.10, ConfidenceModerate},
		{0.0999, ConfidenceLow},
		{0.05, ConfidenceLow},
		{0.0499, ConfidenceVeryLow},
		{0.0, ConfidenceVeryLow},
	}
	for _, tc := range cases {
		if got := ClassifyGap(tc.gap); got != tc.want {
			t.Errorf("ClassifyGap(%.4f) = %s, want %s", tc.gap, got, tc.want)
		}
	}
}

func TestClassifyGapMonotonic(t *testing.T) {
	order := map[Confidence]int{
		ConfidenceVeryLow:  0,
		ConfidenceLow:      1,
		ConfidenceModerate: 2,
		ConfidenceHigh:     3,
	}

	prev := -1
	for gap := 0.0; gap <= 0.5; gap += 0.001 {
		rank := order[ClassifyGap(gap)]
		if rank < prev {
			t.Fatalf("confidence decreased at gap %.3f", gap)
		}
		prev = rank
	}
}

func TestRankTwoTrackScenario(t *testing.T) {
	// Query lyrics match track A completely and track B partially, with
	// identical audio everywhere: A combined = 0.30*1 + 0.70*1 = 1.00,
	// B shares 1 of 4 union words: 0.30*1 + 0.70*0.25 = 0.475.
	// Gap 0.525 >= 0.20 so HIGH.
	lib := mustLibrary(t,
		testTrack("Artist A", "Song A", "alpha beta"),
		testTrack("Artist B", "Song B", "alpha gamma delta"),
	)

	query := QuerySample{Transcript: "alpha beta", Features: sameFeatures()}

	result, err := Rank(query, lib)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	if result.Match.Title != "Song A" {
		t.Errorf("matched %s, want Song A", result.Match.Title)
	}
	if result.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want HIGH", result.Confidence)
	}
	if len(result.Top5) != 2 {
		t.Fatalf("top5 has %d entries, want 2", len(result.Top5))
	}
	if result.Top5[0].Combined < result.Top5[1].Combined {
		t.Error("top5 not ordered by combined score descending")
	}
	wantGap := result.Top5[0].Combined - result.Top5[1].Combined
	if !almostEqual(result.Gap, wantGap) {
		t.Errorf("gap = %f, want %f", result.Gap, wantGap)
	}
}

func TestRankTop5Truncation(t *testing.T) {
	tracks := []ReferenceTrack{
		testTrack("A1", "T1", "one"),
		testTrack("A2", "T2", "one two"),
		testTrack("A3", "T3", "one two three"),
		testTrack("A4", "T4", "one two three four"),
		testTrack("A5", "T5", "one two three four five"),
		testTrack("A6", "T6", "one two three four five six"),
		testTrack("A7", "T7", "unrelated words entirely"),
	}
	lib := mustLibrary(t, tracks...)

	query := QuerySample{Transcript: "one two three four five six", Features: sameFeatures()}
	result, err := Rank(query, lib)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	if len(result.Top5) != 5 {
		t.Errorf("top5 has %d entries, want 5", len(result.Top5))
	}
	for i := 1; i < len(result.Top5); i++ {
		if result.Top5[i].Combined > result.Top5[i-1].Combined {
			t.Errorf("top5 out of order at %d", i)
		}
	}
	if result.Top5[0].Title != "T6" {
		t.Errorf("best match = %s, want T6", result.Top5[0].Title)
	}
}

func TestRankDeterministic(t *testing.T) {
	lib := mustLibrary(t,
		testTrack("A", "First", "x y z"),
		testTrack("B", "Second", "x y w"),
		testTrack("C", "Third", "p q r"),
	)
	query := QuerySample{Transcript: "x y z extra", Features: sameFeatures()}

	first, err := Rank(query, lib)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Rank(query, lib)
		if err != nil {
			t.Fatalf("Rank failed on repeat: %v", err)
		}
		if !reflect.DeepEqual(first.Top5, again.Top5) {
			t.Fatal("top5 differs across identical runs")
		}
		if first.Confidence != again.Confidence {
			t.Fatal("confidence differs across identical runs")
		}
	}
}

func TestRankTieBreakKeepsLibraryOrder(t *testing.T) {
	// Two tracks with identical lyrics and audio score identically; the
	// stable sort must keep insertion order.
	lib := mustLibrary(t,
		testTrack("First Artist", "Same Song", "same words here"),
		testTrack("Second Artist", "Same Song", "same words here"),
	)
	query := QuerySample{Transcript: "same words here", Features: sameFeatures()}

	result, err := Rank(query, lib)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if result.Match.Artist != "First Artist" {
		t.Errorf("tie broke to %s, want First Artist (library order)", result.Match.Artist)
	}
	if result.Confidence != ConfidenceVeryLow {
		t.Errorf("confidence = %s, want VERY_LOW for zero gap", result.Confidence)
	}
}

func TestRankSingleTrackLibrary(t *testing.T) {
	lib := mustLibrary(t, testTrack("Solo", "Only", "words"))
	query := QuerySample{Transcript: "words", Features: sameFeatures()}

	_, err := Rank(query, lib)
	if err == nil {
		t.Fatal("expected error for single-track library")
	}
	var matchErr *MatchingError
	if !errors.As(err, &matchErr) {
		t.Errorf("error type = %T, want *MatchingError", err)
	}
}

func TestRankNilLibrary(t *testing.T) {
	_, err := Rank(QuerySample{}, nil)
	var matchErr *MatchingError
	if !errors.As(err, &matchErr) {
		t.Errorf("error type = %T, want *MatchingError", err)
	}
}

func TestRankNeverSuppressesVeryLow(t *testing.T) {
	lib := mustLibrary(t,
		testTrack("A", "T1", "exact same lyric"),
		testTrack("B", "T2", "exact same lyric"),
	)
	query := QuerySample{Transcript: "totally unrelated transcript", Features: sameFeatures()}

	result, err := Rank(query, lib)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if result.Confidence != ConfidenceVeryLow {
		t.Errorf("confidence = %s, want VERY_LOW", result.Confidence)
	}
	// The result is still returned in full; suppression is caller policy.
	if len(result.Top5) != 2 {
		t.Errorf("top5 has %d entries, want 2", len(result.Top5))
	}
}
