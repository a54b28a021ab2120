// Package server provides the HTTP server for the ffmpeg service.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// Request defaults applied when optional fields are omitted.
const (
	defaultTimestamp = 1.0
	defaultOpacity   = 0.9
	defaultScale     = 0.75
)

// ThumbnailRequest is the HTTP request body for extracting a thumbnail.
type ThumbnailRequest struct {
	GenerationID string `json:"generation_id" validate:"required"`
	VideoURL     string `json:"video_url" validate:"required,url"`
	UserID       string `json:"user_id" validate:"required"`
	// Timestamp is the seek offset in seconds. Defaults to 1.0.
	Timestamp *float64 `json:"timestamp" validate:"omitempty,gte=0"`
	// Width and Height bound the thumbnail. Missing sides keep the aspect ratio.
	Width      *int   `json:"width" validate:"omitempty,min=1,max=1920"`
	Height     *int   `json:"height" validate:"omitempty,min=1,max=1080"`
	WebhookURL string `json:"webhook_url" validate:"omitempty,url"`
}

// WatermarkRequest is the HTTP request body for watermarking a video.
type WatermarkRequest struct {
	GenerationID string `json:"generation_id" validate:"required"`
	VideoURL     string `json:"video_url" validate:"required,url"`
	UserID       string `json:"user_id" validate:"required"`
	// Position defaults to bottom-center.
	Position string   `json:"position" validate:"omitempty,oneof=bottom-center left-center right-center"`
	Opacity  *float64 `json:"opacity" validate:"omitempty,gte=0,lte=1"`
	// Scale multiplies the overlay image's own dimensions.
	Scale *float64 `json:"scale" validate:"omitempty,gt=0"`
	// WatermarkURL replaces the built-in overlay.
	WatermarkURL string `json:"watermark_url" validate:"omitempty,url"`
	WebhookURL   string `json:"webhook_url" validate:"omitempty,url"`
}

// ResizeRequest is the HTTP request body for resizing a video.
type ResizeRequest struct {
	GenerationID string `json:"generation_id" validate:"required"`
	VideoURL     string `json:"video_url" validate:"required,url"`
	UserID       string `json:"user_id" validate:"required"`
	Width        *int   `json:"width" validate:"omitempty,min=1,max=3840"`
	Height       *int   `json:"height" validate:"omitempty,min=1,max=2160"`
	// Bitrate is passed to the encoder as is, e.g. "2M".
	Bitrate string `json:"bitrate" validate:"omitempty,max=16"`
	// PreserveAspectRatio defaults to true.
	PreserveAspectRatio *bool  `json:"preserve_aspect_ratio"`
	WebhookURL          string `json:"webhook_url" validate:"omitempty,url"`
}

// MetadataRequest is the HTTP request body for reading video metadata.
type MetadataRequest struct {
	VideoURL string `json:"video_url" validate:"required,url"`
}

// AcceptedResponse is returned when a job has been scheduled.
type AcceptedResponse struct {
	Success      bool   `json:"success"`
	ProcessingID string `json:"processing_id"`
	Message      string `json:"message"`
	Status       string `json:"status"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	Status            string `json:"status"`
	Service           string `json:"service"`
	Timestamp         string `json:"timestamp"`
	FFmpegAvailable   bool   `json:"ffmpeg_available"`
	StorageConfigured bool   `json:"storage_configured"`
	RunningJobs       int    `json:"running_jobs"`
	QueuedJobs        int    `json:"queued_jobs"`
}

// InfoResponse describes the service on the root endpoint.
type InfoResponse struct {
	Service   string   `json:"service"`
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Timestamp string   `json:"timestamp"`
	Endpoints []string `json:"endpoints"`
}
