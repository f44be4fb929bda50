package types

import "time"

// Generation status constants
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// GenerationRecord describes one processed sentence request
type GenerationRecord struct {
	ID            string    `json:"id"`
	Sentence      string    `json:"sentence"`
	ResolvedWords string    `json:"resolved_words"`
	ClipCount     int       `json:"clip_count"`
	Duration      float64   `json:"duration"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
