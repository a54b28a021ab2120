package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/ffmpeg-service/internal/job"
	"github.com/maauso/ffmpeg-service/internal/media"
)

const (
	serviceName    = "ffmpeg-processor"
	serviceVersion = "1.0.0"
	maxBodyBytes   = 1 << 20
)

// JobService is the part of the job service the handlers depend on.
type JobService interface {
	Schedule(ctx context.Context, d job.Descriptor) string
	Probe(ctx context.Context, url string) (*media.Metadata, error)
	Health(ctx context.Context) job.Health
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   JobService
	validator *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service JobService, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Root handles GET / requests.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Service:   serviceName,
		Status:    "running",
		Version:   serviceVersion,
		Timestamp: h.timestamp(),
		Endpoints: []string{
			"/health",
			"/api/v1/extract-thumbnail",
			"/api/v1/add-watermark",
			"/api/v1/get-metadata",
			"/api/v1/resize-video",
			"/extract-thumbnail",
			"/apply-watermark",
		},
	})
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health(r.Context())
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:            "healthy",
		Service:           serviceName,
		Timestamp:         h.timestamp(),
		FFmpegAvailable:   health.FFmpegAvailable,
		StorageConfigured: health.StorageConfigured,
		RunningJobs:       health.RunningJobs,
		QueuedJobs:        health.QueuedJobs,
	})
}

// ExtractThumbnail handles POST /api/v1/extract-thumbnail requests.
func (h *Handlers) ExtractThumbnail(w http.ResponseWriter, r *http.Request) {
	var req ThumbnailRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.scheduleThumbnail(w, r, req)
}

// LegacyExtractThumbnail handles POST /extract-thumbnail requests.
func (h *Handlers) LegacyExtractThumbnail(w http.ResponseWriter, r *http.Request) {
	var req LegacyThumbnailRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.scheduleThumbnail(w, r, req.toThumbnail())
}

func (h *Handlers) scheduleThumbnail(w http.ResponseWriter, r *http.Request, req ThumbnailRequest) {
	opts := media.ThumbnailOptions{
		Timestamp: defaultTimestamp,
		Width:     deref(req.Width, 0),
		Height:    deref(req.Height, 0),
	}
	if req.Timestamp != nil {
		opts.Timestamp = *req.Timestamp
	}

	h.schedule(w, r, job.Descriptor{
		Kind:         job.KindThumbnail,
		GenerationID: req.GenerationID,
		UserID:       req.UserID,
		VideoURL:     req.VideoURL,
		NotifyURL:    req.WebhookURL,
		Thumbnail:    opts,
	}, "Thumbnail extraction started")
}

// AddWatermark handles POST /api/v1/add-watermark requests.
func (h *Handlers) AddWatermark(w http.ResponseWriter, r *http.Request) {
	var req WatermarkRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.scheduleWatermark(w, r, req)
}

// LegacyApplyWatermark handles POST /apply-watermark requests.
func (h *Handlers) LegacyApplyWatermark(w http.ResponseWriter, r *http.Request) {
	var req LegacyWatermarkRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.scheduleWatermark(w, r, req.toWatermark())
}

func (h *Handlers) scheduleWatermark(w http.ResponseWriter, r *http.Request, req WatermarkRequest) {
	position := media.PositionBottomCenter
	if req.Position != "" {
		position = media.Position(req.Position)
	}

	h.schedule(w, r, job.Descriptor{
		Kind:         job.KindWatermark,
		GenerationID: req.GenerationID,
		UserID:       req.UserID,
		VideoURL:     req.VideoURL,
		NotifyURL:    req.WebhookURL,
		OverlayURL:   req.WatermarkURL,
		Watermark: media.WatermarkOptions{
			Position: position,
			Opacity:  deref(req.Opacity, defaultOpacity),
			Scale:    deref(req.Scale, defaultScale),
		},
	}, "Watermark addition started")
}

// ResizeVideo handles POST /api/v1/resize-video requests.
func (h *Handlers) ResizeVideo(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.schedule(w, r, job.Descriptor{
		Kind:         job.KindResize,
		GenerationID: req.GenerationID,
		UserID:       req.UserID,
		VideoURL:     req.VideoURL,
		NotifyURL:    req.WebhookURL,
		Resize: media.ResizeOptions{
			Width:          deref(req.Width, 0),
			Height:         deref(req.Height, 0),
			Bitrate:        req.Bitrate,
			PreserveAspect: deref(req.PreserveAspectRatio, true),
		},
	}, "Video resize started")
}

// GetMetadata handles POST /api/v1/get-metadata requests.
// Unlike the job endpoints it answers synchronously.
func (h *Handlers) GetMetadata(w http.ResponseWriter, r *http.Request) {
	var req MetadataRequest
	if !h.decode(w, r, &req) {
		return
	}

	md, err := h.service.Probe(r.Context(), req.VideoURL)
	if err != nil {
		h.logger.Error("failed to read metadata",
			slog.String("video_url", req.VideoURL),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error(), "METADATA_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, md)
}

// schedule validates d, hands it to the job service and answers 202.
func (h *Handlers) schedule(w http.ResponseWriter, r *http.Request, d job.Descriptor, message string) {
	if err := d.Validate(); err != nil {
		h.logger.Warn("job rejected",
			slog.String("kind", string(d.Kind)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	processingID := h.service.Schedule(r.Context(), d)

	h.logger.Info("job accepted",
		slog.String("processing_id", processingID),
		slog.String("generation_id", d.GenerationID),
		slog.String("kind", string(d.Kind)),
		slog.String("request_id", RequestIDFromContext(r.Context())),
	)

	writeJSON(w, http.StatusAccepted, AcceptedResponse{
		Success:      true,
		ProcessingID: processingID,
		Message:      message,
		Status:       "processing",
	})
}

// decode reads and validates a JSON body into dst, writing the error
// response itself when it fails.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

func (h *Handlers) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
