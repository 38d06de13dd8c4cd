package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ryanseay/covermatch/pkg/covermatch"
	"github.com/ryanseay/covermatch/pkg/utils"
)

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, errorResponse{Error: message})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "covermatch",
		"tracks":  s.pipeline.Library().Len(),
		"time":    time.Now().Format(time.RFC3339),
	})
}

// handleLibrary handles GET /api/library, listing track identities only.
func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	tracks := s.pipeline.Library().Tracks()
	dtos := make([]trackDTO, len(tracks))
	for i, t := range tracks {
		dtos[i] = trackDTO{Artist: t.Artist, Title: t.Title, Genre: t.Genre}
	}
	s.respondJSON(w, http.StatusOK, libraryResponse{Tracks: dtos, Count: len(dtos)})
}

// handleProcess handles POST /api/process: validates the request, then
// streams pipeline progress as Server-Sent Events until the terminal event.
// Malformed input is rejected with a plain 400 before the pipeline starts;
// it never becomes a staged error event.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "request body is required")
		return
	}
	if req.YouTubeURL == "" {
		s.respondError(w, http.StatusBadRequest, "youtube_url is required")
		return
	}

	videoID, err := utils.ExtractVideoID(req.YouTubeURL)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s.log.Infof("processing video: %s", videoID)

	// A cached result short-circuits the pipeline entirely.
	if result, ok := s.results.Get(r.Context(), videoID); ok {
		s.log.Infof("cache hit for %s: %s - %s", videoID, result.Match.Artist, result.Match.Title)
		s.writeEvent(w, flusher, covermatch.Event{
			Status:   covermatch.StatusComplete,
			Progress: 100,
			Message:  "Processing complete (cached)",
			Result:   result,
		})
		return
	}

	for ev := range s.pipeline.Process(r.Context(), videoID) {
		s.writeEvent(w, flusher, ev)
		if ev.Status == covermatch.StatusComplete && ev.Result != nil {
			// The client context closes when the stream ends; give the
			// cache write its own deadline.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.results.Put(ctx, videoID, ev.Result)
			cancel()
		}
	}
}

// writeEvent serializes one event in SSE framing and flushes it.
func (s *Server) writeEvent(w http.ResponseWriter, flusher http.Flusher, ev covermatch.Event) {
	data, err := json.Marshal(toEventDTO(ev))
	if err != nil {
		s.log.Errorf("failed to marshal event: %v", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
