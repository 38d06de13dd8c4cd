package covermatch

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakeDownloader struct {
	title string
	err   error
	calls int
}

func (f *fakeDownloader) Fetch(ctx context.Context, videoID string) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return "testdata/" + videoID + ".mp3", f.title, nil
}

type fakeExtractor struct {
	features AudioFeatures
	err      error
	calls    int
}

func (f *fakeExtractor) Extract(ctx context.Context, audioPath string) (AudioFeatures, error) {
	f.calls++
	return f.features, f.err
}

type fakeTranscriber struct {
	transcript string
	err        error
	calls      int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.calls++
	return f.transcript, f.err
}

// blockingDownloader waits for its context to end, simulating a hung
// network call.
type blockingDownloader struct{}

func (blockingDownloader) Fetch(ctx context.Context, videoID string) (string, string, error) {
	<-ctx.Done()
	return "", "", &DownloadError{VideoID: videoID, Err: ctx.Err()}
}

func testPipeline(t *testing.T, lib *Library, opts ...Option) *Pipeline {
	t.Helper()
	base := []Option{
		WithDownloader(&fakeDownloader{title: "Test Video"}),
		WithExtractor(&fakeExtractor{features: sameFeatures()}),
		WithTranscriber(&fakeTranscriber{transcript: "alpha beta"}),
		WithLibrary(lib),
	}
	p, err := NewPipeline(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

func collectEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("timed out waiting for pipeline events")
		}
	}
}

func twoTrackLibrary(t *testing.T) *Library {
	t.Helper()
	return mustLibrary(t,
		testTrack("Artist A", "Song A", "alpha beta"),
		testTrack("Artist B", "Song B", "gamma delta epsilon"),
	)
}

func TestNewPipelineRequiresCollaborators(t *testing.T) {
	cases := []struct {
		name string
		opts []Option
	}{
		{"missing downloader", []Option{
			WithExtractor(&fakeExtractor{}), WithTranscriber(&fakeTranscriber{}),
			WithLibrary(twoTrackLibrary(t)),
		}},
		{"missing extractor", []Option{
			WithDownloader(&fakeDownloader{}), WithTranscriber(&fakeTranscriber{}),
			WithLibrary(twoTrackLibrary(t)),
		}},
		{"missing transcriber", []Option{
			WithDownloader(&fakeDownloader{}), WithExtractor(&fakeExtractor{}),
			WithLibrary(twoTrackLibrary(t)),
		}},
		{"missing library", []Option{
			WithDownloader(&fakeDownloader{}), WithExtractor(&fakeExtractor{}),
			WithTranscriber(&fakeTranscriber{}),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPipeline(tc.opts...); err == nil {
				t.Error("expected construction error")
			}
		})
	}
}

func TestPipelineFullRun(t *testing.T) {
	p := testPipeline(t, twoTrackLibrary(t))
	events := collectEvents(t, p.Process(context.Background(), "dQw4w9WgXcQ"))

	want := []struct {
		status   Status
		progress int
	}{
		{StatusDownloading, 0},
		{StatusDownloading, 25},
		{StatusFingerprinting, 25},
		{StatusFingerprinting, 50},
		{StatusTranscribing, 50},
		{StatusTranscribing, 75},
		{StatusMatching, 75},
		{StatusMatching, 90},
		{StatusComplete, 100},
	}

	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, w := range want {
		if events[i].Status != w.status || events[i].Progress != w.progress {
			t.Errorf("event %d = (%s, %d), want (%s, %d)",
				i, events[i].Status, events[i].Progress, w.status, w.progress)
		}
	}

	final := events[len(events)-1]
	if !final.Terminal() {
		t.Error("last event is not terminal")
	}
	if final.Result == nil {
		t.Fatal("complete event carries no result")
	}
	if final.Result.Match.Title != "Song A" {
		t.Errorf("matched %s, want Song A", final.Result.Match.Title)
	}
	for _, ev := range events[:len(events)-1] {
		if ev.Result != nil {
			t.Error("non-terminal event carries a result")
		}
	}
}

func TestPipelineDownloadFailure(t *testing.T) {
	p := testPipeline(t, twoTrackLibrary(t),
		WithDownloader(&fakeDownloader{err: &DownloadError{VideoID: "x", Err: fmt.Errorf("network unreachable")}}))

	events := collectEvents(t, p.Process(context.Background(), "dQw4w9WgXcQ"))

	// Exactly one terminal error at the download milestone, nothing after.
	final := events[len(events)-1]
	if final.Status != StatusError {
		t.Fatalf("final status = %s, want error", final.Status)
	}
	if final.Progress != 0 {
		t.Errorf("error progress = %d, want 0 (download stage milestone)", final.Progress)
	}
	if !strings.Contains(final.Message, "Download failed") {
		t.Errorf("error message = %q, want download failure reason", final.Message)
	}
	for _, ev := range events[:len(events)-1] {
		if ev.Terminal() {
			t.Error("terminal event emitted before the end of the stream")
		}
	}
}

func TestPipelineStageFailureMilestones(t *testing.T) {
	cases := []struct {
		name         string
		opt          Option
		wantProgress int
	}{
		{
			"extraction failure",
			WithExtractor(&fakeExtractor{err: &FeatureExtractionError{Err: fmt.Errorf("bad samples")}}),
			25,
		},
		{
			"transcription failure",
			WithTranscriber(&fakeTranscriber{err: &TranscriptionError{Err: fmt.Errorf("rate limited")}}),
			50,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testPipeline(t, twoTrackLibrary(t), tc.opt)
			events := collectEvents(t, p.Process(context.Background(), "dQw4w9WgXcQ"))

			final := events[len(events)-1]
			if final.Status != StatusError {
				t.Fatalf("final status = %s, want error", final.Status)
			}
			if final.Progress != tc.wantProgress {
				t.Errorf("error progress = %d, want %d", final.Progress, tc.wantProgress)
			}
		})
	}
}

func TestPipelineMatchFailure(t *testing.T) {
	lib := mustLibrary(t, testTrack("Solo", "Only", "words"))
	p := testPipeline(t, lib)

	events := collectEvents(t, p.Process(context.Background(), "dQw4w9WgXcQ"))

	final := events[len(events)-1]
	if final.Status != StatusError {
		t.Fatalf("final status = %s, want error", final.Status)
	}
	if final.Progress != 75 {
		t.Errorf("error progress = %d, want 75 (match stage milestone)", final.Progress)
	}
}

func TestPipelineCancellation(t *testing.T) {
	extractor := &fakeExtractor{features: sameFeatures()}
	p := testPipeline(t, twoTrackLibrary(t),
		WithDownloader(blockingDownloader{}),
		WithExtractor(extractor))

	ctx, cancel := context.WithCancel(context.Background())
	events := p.Process(ctx, "dQw4w9WgXcQ")

	// Drain the downloading-start event, then disconnect.
	first := <-events
	if first.Status != StatusDownloading {
		t.Fatalf("first event = %s, want downloading", first.Status)
	}
	cancel()

	rest := collectEvents(t, events)
	for _, ev := range rest {
		if ev.Terminal() {
			t.Errorf("canceled run emitted terminal event %+v", ev)
		}
	}
	if extractor.calls != 0 {
		t.Error("later collaborator invoked after cancellation")
	}
}

func TestPipelineStageTimeout(t *testing.T) {
	p := testPipeline(t, twoTrackLibrary(t),
		WithDownloader(blockingDownloader{}),
		WithStageTimeouts(20*time.Millisecond, time.Minute, time.Minute, time.Minute))

	events := collectEvents(t, p.Process(context.Background(), "dQw4w9WgXcQ"))

	// A stage timeout is an ordinary stage failure, not a distinct state.
	final := events[len(events)-1]
	if final.Status != StatusError {
		t.Fatalf("final status = %s, want error", final.Status)
	}
	if final.Progress != 0 {
		t.Errorf("error progress = %d, want 0", final.Progress)
	}
}
