// Package transcribe produces lyric transcripts via the ElevenLabs
// speech-to-text API.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ryanseay/covermatch/pkg/covermatch"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// ElevenLabsTranscriber calls the ElevenLabs audio-to-text endpoint. It
// implements covermatch.Transcriber.
type ElevenLabsTranscriber struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewElevenLabsTranscriber returns a transcriber using the given API key.
func NewElevenLabsTranscriber(apiKey string) *ElevenLabsTranscriber {
	return &ElevenLabsTranscriber{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		Client:  http.DefaultClient,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Transcribe uploads the audio file and returns the transcript text. An
// empty transcript is not an error; the matcher treats it as zero lyric
// similarity.
func (t *ElevenLabsTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if t.APIKey == "" {
		return "", &covermatch.TranscriptionError{Err: fmt.Errorf("ElevenLabs API key not configured")}
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return "", &covermatch.TranscriptionError{Err: err}
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return "", &covermatch.TranscriptionError{Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", &covermatch.TranscriptionError{Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &covermatch.TranscriptionError{Err: err}
	}

	baseURL := t.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/audio-to-text", &body)
	if err != nil {
		return "", &covermatch.TranscriptionError{Err: err}
	}
	req.Header.Set("xi-api-key", t.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &covermatch.TranscriptionError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result transcriptionResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", &covermatch.TranscriptionError{Err: fmt.Errorf("decoding response: %w", err)}
		}
		return result.Text, nil
	case http.StatusUnauthorized:
		return "", &covermatch.TranscriptionError{Err: fmt.Errorf("invalid ElevenLabs API key")}
	case http.StatusTooManyRequests:
		return "", &covermatch.TranscriptionError{Err: fmt.Errorf("ElevenLabs API rate limit exceeded")}
	default:
		detail := readErrorDetail(resp.Body)
		return "", &covermatch.TranscriptionError{
			Err: fmt.Errorf("ElevenLabs API error (%d): %s", resp.StatusCode, detail),
		}
	}
}

func readErrorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return string(raw)
}
