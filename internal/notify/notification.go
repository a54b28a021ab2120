// Package notify delivers job completion notifications to webhooks.
package notify

import (
	"strings"
	"time"
)

// Status is the terminal state of a job.
type Status string

// Terminal job states.
const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result holds the kind-specific outcome of a completed job.
type Result struct {
	ThumbnailURL   string   `json:"thumbnail_url,omitempty"`
	WatermarkedURL string   `json:"watermarked_url,omitempty"`
	ResizedURL     string   `json:"resized_url,omitempty"`
	OriginalURL    string   `json:"original_url,omitempty"`
	Timestamp      *float64 `json:"timestamp,omitempty"`
	NewSize        int64    `json:"new_size,omitempty"`
	Dimensions     string   `json:"dimensions,omitempty"`
	DBUpdated      bool     `json:"db_updated"`
	// Uploaded is false when the URLs point at the local temp path.
	Uploaded bool `json:"uploaded"`
}

// Notification is the payload posted when a job ends. URL fields of the
// result are repeated at the top level for older consumers.
type Notification struct {
	GenerationID   string  `json:"generation_id"`
	ProcessingID   string  `json:"processing_id"`
	Status         Status  `json:"status"`
	Timestamp      string  `json:"timestamp"`
	ThumbnailURL   string  `json:"thumbnail_url,omitempty"`
	WatermarkedURL string  `json:"watermarked_url,omitempty"`
	ResizedURL     string  `json:"resized_url,omitempty"`
	ResultURL      string  `json:"result_url,omitempty"`
	DBUpdated      *bool   `json:"db_updated,omitempty"`
	Result         *Result `json:"result,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// Completed builds the notification for a successful job.
func Completed(generationID, processingID string, r Result) Notification {
	r.ThumbnailURL = cleanURL(r.ThumbnailURL)
	r.WatermarkedURL = cleanURL(r.WatermarkedURL)
	r.ResizedURL = cleanURL(r.ResizedURL)
	r.OriginalURL = cleanURL(r.OriginalURL)

	n := Notification{
		GenerationID:   generationID,
		ProcessingID:   processingID,
		Status:         StatusCompleted,
		Timestamp:      now(),
		ThumbnailURL:   r.ThumbnailURL,
		WatermarkedURL: r.WatermarkedURL,
		ResizedURL:     r.ResizedURL,
		DBUpdated:      &r.DBUpdated,
		Result:         &r,
	}
	switch {
	case r.ResizedURL != "":
		n.ResultURL = r.ResizedURL
	case r.WatermarkedURL != "":
		n.ResultURL = r.WatermarkedURL
	}
	return n
}

// Failed builds the notification for a job that ended with err.
func Failed(generationID, processingID string, err error) Notification {
	n := Notification{
		GenerationID: generationID,
		ProcessingID: processingID,
		Status:       StatusFailed,
		Timestamp:    now(),
	}
	if err != nil {
		n.Error = err.Error()
	}
	return n
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// cleanURL strips quoting and trailing separators that upstream callers
// sometimes leave around URLs. Non-URL values are returned unchanged.
func cleanURL(s string) string {
	trimmed := strings.Trim(strings.TrimSpace(s), `"';,`)
	if !strings.HasPrefix(trimmed, "http") {
		return s
	}
	return trimmed
}
