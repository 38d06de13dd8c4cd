package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[\w-]{11}$`)

// IsVideoID reports whether s looks like a bare 11-character YouTube video ID.
func IsVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
// Accepted forms: a bare video ID, youtube.com/watch?v=..., youtu.be/...,
// youtube.com/embed/... and youtube.com/v/....
func ExtractVideoID(youtubeURL string) (string, error) {
	if youtubeURL == "" {
		return "", fmt.Errorf("youtube URL is required")
	}

	if IsVideoID(youtubeURL) {
		return youtubeURL, nil
	}

	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if strings.Contains(u.Host, "youtu.be") {
		id := strings.TrimPrefix(u.Path, "/")
		if idx := strings.Index(id, "/"); idx != -1 {
			id = id[:idx]
		}
		if IsVideoID(id) {
			return id, nil
		}
		return "", fmt.Errorf("no video ID found in youtu.be URL: %s", youtubeURL)
	}

	if strings.Contains(u.Host, "youtube.com") {
		if id := u.Query().Get("v"); IsVideoID(id) {
			return id, nil
		}
		for _, prefix := range []string{"/embed/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.TrimPrefix(u.Path, prefix)
				if idx := strings.Index(id, "/"); idx != -1 {
					id = id[:idx]
				}
				if IsVideoID(id) {
					return id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unable to extract video ID from URL: %s", youtubeURL)
}
