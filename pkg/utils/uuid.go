package utils

import "github.com/google/uuid"

// NewJobID returns a fresh UUID v4 string used to correlate log lines for a
// single pipeline run.
func NewJobID() string {
	return uuid.NewString()
}
