// Package download fetches query audio from YouTube via the yt-dlp binary.
package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ryanseay/covermatch/pkg/covermatch"
	"github.com/ryanseay/covermatch/pkg/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// YTDLPDownloader shells out to yt-dlp to extract best-quality mp3 audio for
// a video ID. It implements covermatch.Downloader.
type YTDLPDownloader struct {
	// Binary is the yt-dlp executable; defaults to "yt-dlp" on PATH.
	Binary string
	// OutputDir receives downloaded audio files; defaults to the OS temp dir.
	OutputDir string
}

// NewYTDLPDownloader returns a downloader writing into outputDir.
func NewYTDLPDownloader(outputDir string) *YTDLPDownloader {
	return &YTDLPDownloader{Binary: "yt-dlp", OutputDir: outputDir}
}

// Fetch downloads the audio track of the given video and returns the local
// file path and the video title. The caller owns the file and removes it
// when the pipeline run ends.
func (d *YTDLPDownloader) Fetch(ctx context.Context, videoID string) (string, string, error) {
	if !utils.IsVideoID(videoID) {
		return "", "", &covermatch.DownloadError{VideoID: videoID, Err: fmt.Errorf("invalid video ID")}
	}

	outputDir := d.OutputDir
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	if err := utils.MakeDir(outputDir); err != nil {
		return "", "", &covermatch.DownloadError{VideoID: videoID, Err: err}
	}

	binary := d.Binary
	if binary == "" {
		binary = "yt-dlp"
	}

	outputTemplate := filepath.Join(outputDir, videoID+".%(ext)s")
	cmd := exec.CommandContext(
		ctx,
		binary,
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"-o", outputTemplate,
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--print", "title",
		"--print", "after_move:filepath",
		"--user-agent", userAgent,
		"--extractor-args", "youtube:player_client=android,web",
		"https://www.youtube.com/watch?v="+videoID,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", "", &covermatch.DownloadError{VideoID: videoID, Err: ctx.Err()}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", "", &covermatch.DownloadError{VideoID: videoID, Err: fmt.Errorf("yt-dlp: %s", msg)}
	}

	title, audioPath := parseOutput(stdout.String(), outputDir, videoID)
	if _, err := os.Stat(audioPath); err != nil {
		return "", "", &covermatch.DownloadError{VideoID: videoID,
			Err: fmt.Errorf("downloaded file not found: %s", audioPath)}
	}

	return audioPath, title, nil
}

// parseOutput reads the two --print lines yt-dlp emits (title first, then
// final filepath) and falls back to the expected mp3 path if output is short.
func parseOutput(out, outputDir, videoID string) (title, audioPath string) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) >= 2 {
		return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[len(lines)-1])
	}
	return videoID, filepath.Join(outputDir, videoID+".mp3")
}
