package covermatch

import (
	"context"
	"fmt"
	"os"

	"github.com/ryanseay/covermatch/pkg/utils"
)

// Status names the pipeline stage an event was emitted from.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusDownloading    Status = "downloading"
	StatusFingerprinting Status = "fingerprinting"
	StatusTranscribing   Status = "transcribing"
	StatusMatching       Status = "matching"
	StatusComplete       Status = "complete"
	StatusError          Status = "error"
)

// Stage start milestones. Each stage also reports a completion progress (the
// next stage's start, except matching which completes at 90 before the final
// 100).
const (
	progressDownloadStart   = 0
	progressExtractStart    = 25
	progressTranscribeStart = 50
	progressMatchStart      = 75
	progressMatchDone       = 90
	progressComplete        = 100
)

// Event is one progress update from a pipeline run. Exactly one terminal
// event (StatusComplete or StatusError) ends every run; the event channel is
// closed after it. Result is non-nil only on StatusComplete.
type Event struct {
	Status   Status
	Progress int
	Message  string
	Result   *MatchResult
}

// Terminal reports whether no further events will follow this one.
func (e Event) Terminal() bool {
	return e.Status == StatusComplete || e.Status == StatusError
}

// Pipeline drives one query through download, feature extraction,
// transcription, and matching, emitting progress events along the way.
// A Pipeline is safe for concurrent use; each Process call owns its own run
// state and the shared library is immutable.
type Pipeline struct {
	cfg *Config
	log Logger
}

// NewPipeline builds a pipeline from the supplied options. The downloader,
// extractor, transcriber, and library are required.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Downloader == nil {
		return nil, fmt.Errorf("pipeline requires a downloader")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("pipeline requires a feature extractor")
	}
	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("pipeline requires a transcriber")
	}
	if cfg.Library == nil {
		return nil, fmt.Errorf("pipeline requires a reference library")
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}

	return &Pipeline{cfg: cfg, log: cfg.Logger}, nil
}

// Library exposes the reference library the pipeline matches against.
func (p *Pipeline) Library() *Library { return p.cfg.Library }

// Process runs the full pipeline for one video ID and returns the event
// stream. The channel is closed after the terminal event. Canceling ctx
// stops the run: in-flight collaborator calls are interrupted, temporary
// audio is removed, and no further events are emitted.
func (p *Pipeline) Process(ctx context.Context, videoID string) <-chan Event {
	events := make(chan Event, 1)
	go func() {
		defer close(events)
		p.run(ctx, videoID, events)
	}()
	return events
}

func (p *Pipeline) run(ctx context.Context, videoID string, events chan<- Event) {
	jobID := utils.NewJobID()
	p.log.Infof("job %s: processing video %s against %d reference tracks",
		jobID, videoID, p.cfg.Library.Len())

	// Stage 1: download.
	if !p.emit(ctx, events, Event{Status: StatusDownloading, Progress: progressDownloadStart,
		Message: "Downloading audio..."}) {
		return
	}

	audioPath, title, err := p.download(ctx, videoID)
	if err != nil {
		p.fail(ctx, events, jobID, progressDownloadStart, fmt.Sprintf("Download failed: %v", err))
		return
	}
	defer func() {
		if rmErr := os.Remove(audioPath); rmErr != nil && !os.IsNotExist(rmErr) {
			p.log.Warnf("job %s: failed to clean up audio file %s: %v", jobID, audioPath, rmErr)
		}
	}()

	if !p.emit(ctx, events, Event{Status: StatusDownloading, Progress: progressExtractStart,
		Message: fmt.Sprintf("Downloaded: %s", title)}) {
		return
	}

	// Stage 2: feature extraction.
	if !p.emit(ctx, events, Event{Status: StatusFingerprinting, Progress: progressExtractStart,
		Message: "Extracting audio fingerprint..."}) {
		return
	}

	features, err := p.extract(ctx, audioPath)
	if err != nil {
		p.fail(ctx, events, jobID, progressExtractStart, fmt.Sprintf("Feature extraction failed: %v", err))
		return
	}

	if !p.emit(ctx, events, Event{Status: StatusFingerprinting, Progress: progressTranscribeStart,
		Message: "Audio features extracted"}) {
		return
	}

	// Stage 3: transcription.
	if !p.emit(ctx, events, Event{Status: StatusTranscribing, Progress: progressTranscribeStart,
		Message: "Transcribing lyrics..."}) {
		return
	}

	transcript, err := p.transcribe(ctx, audioPath)
	if err != nil {
		p.fail(ctx, events, jobID, progressTranscribeStart, fmt.Sprintf("Transcription failed: %v", err))
		return
	}

	if !p.emit(ctx, events, Event{Status: StatusTranscribing, Progress: progressMatchStart,
		Message: fmt.Sprintf("Transcribed %d characters", len(transcript))}) {
		return
	}

	// Stage 4: matching.
	if !p.emit(ctx, events, Event{Status: StatusMatching, Progress: progressMatchStart,
		Message: "Matching against reference library..."}) {
		return
	}

	query := QuerySample{Transcript: transcript, Features: features}
	result, err := Rank(query, p.cfg.Library)
	if err != nil {
		p.fail(ctx, events, jobID, progressMatchStart, fmt.Sprintf("Matching failed: %v", err))
		return
	}

	if !p.emit(ctx, events, Event{Status: StatusMatching, Progress: progressMatchDone,
		Message: fmt.Sprintf("Matched: %s - %s", result.Match.Artist, result.Match.Title)}) {
		return
	}

	p.log.Infof("job %s: matched %s - %s (confidence=%s gap=%.3f)",
		jobID, result.Match.Artist, result.Match.Title, result.Confidence, result.Gap)

	p.emit(ctx, events, Event{Status: StatusComplete, Progress: progressComplete,
		Message: "Processing complete", Result: result})
}

func (p *Pipeline) download(ctx context.Context, videoID string) (string, string, error) {
	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.DownloadTimeout)
	defer cancel()
	return p.cfg.Downloader.Fetch(stageCtx, videoID)
}

func (p *Pipeline) extract(ctx context.Context, audioPath string) (AudioFeatures, error) {
	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.ExtractTimeout)
	defer cancel()
	return p.cfg.Extractor.Extract(stageCtx, audioPath)
}

func (p *Pipeline) transcribe(ctx context.Context, audioPath string) (string, error) {
	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.TranscribeTimeout)
	defer cancel()
	return p.cfg.Transcriber.Transcribe(stageCtx, audioPath)
}

// fail emits the single terminal error event, unless the run itself was
// canceled, in which case the consumer is gone and nothing is emitted.
func (p *Pipeline) fail(ctx context.Context, events chan<- Event, jobID string, progress int, message string) {
	if ctx.Err() != nil {
		p.log.Infof("job %s: canceled at progress %d", jobID, progress)
		return
	}
	p.log.Warnf("job %s: %s", jobID, message)
	p.emit(ctx, events, Event{Status: StatusError, Progress: progress, Message: message})
}

// emit delivers an event unless the run has been canceled. It reports
// whether the run should continue.
func (p *Pipeline) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
