package server

import "github.com/ryanseay/covermatch/pkg/covermatch"

// processRequest is the request body for POST /api/process.
type processRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

// matchDTO identifies the matched reference track on the wire.
type matchDTO struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Genre  string `json:"genre,omitempty"`
}

// eventDTO is the wire shape of one SSE event. Non-terminal events carry
// status/progress/message only; the terminal success event flattens the
// match result into the payload. Scores are pointers so a legitimate zero
// survives omitempty on non-terminal events.
type eventDTO struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`

	Match         *matchDTO               `json:"match,omitempty"`
	Confidence    string                  `json:"confidence,omitempty"`
	AudioSim      *float64                `json:"audioSim,omitempty"`
	LyricsSim     *float64                `json:"lyricsSim,omitempty"`
	CombinedScore *float64                `json:"combinedScore,omitempty"`
	Gap           *float64                `json:"gap,omitempty"`
	Top5          []covermatch.TrackScore `json:"top5,omitempty"`
}

func toEventDTO(ev covermatch.Event) eventDTO {
	dto := eventDTO{
		Status:   string(ev.Status),
		Progress: ev.Progress,
		Message:  ev.Message,
	}
	if ev.Result != nil {
		attachResult(&dto, ev.Result)
	}
	return dto
}

func attachResult(dto *eventDTO, result *covermatch.MatchResult) {
	dto.Match = &matchDTO{
		Artist: result.Match.Artist,
		Title:  result.Match.Title,
		Genre:  result.Match.Genre,
	}
	dto.Confidence = string(result.Confidence)
	dto.AudioSim = ptr(result.Score.AudioSim)
	dto.LyricsSim = ptr(result.Score.LyricsSim)
	dto.CombinedScore = ptr(result.Score.Combined)
	dto.Gap = ptr(result.Gap)
	dto.Top5 = result.Top5
}

func ptr(f float64) *float64 { return &f }

// trackDTO is one library entry in GET /api/library responses.
type trackDTO struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Genre  string `json:"genre,omitempty"`
}

type libraryResponse struct {
	Tracks []trackDTO `json:"tracks"`
	Count  int        `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}
