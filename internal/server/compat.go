package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/maauso/ffmpeg-service/internal/media"
)

// Defaults of the edge-function request shapes.
const (
	legacyUserID       = "edge-function"
	legacyExtractFrame = 0.5
	legacyFrameSeconds = 10
	legacyOpacity      = 0.7
	legacyScale        = 0.15
)

// looseFloat accepts a JSON number or a numeric string.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*f = looseFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = looseFloat(v)
	return nil
}

func (f *looseFloat) or(def float64) float64 {
	if f == nil {
		return def
	}
	return float64(*f)
}

// LegacyThumbnailRequest is the thumbnail body sent by the edge functions.
type LegacyThumbnailRequest struct {
	GenerationID string `json:"generation_id" validate:"required"`
	VideoURL     string `json:"video_url" validate:"required,url"`
	UserID       string `json:"user_id"`
	// ExtractFrame is a fraction of the first ten seconds.
	ExtractFrame *looseFloat `json:"extract_frame"`
	WebhookURL   string      `json:"webhook_url" validate:"omitempty,url"`
}

// toThumbnail maps the body onto the current thumbnail request.
func (r LegacyThumbnailRequest) toThumbnail() ThumbnailRequest {
	userID := r.UserID
	if userID == "" {
		userID = legacyUserID
	}
	ts := r.ExtractFrame.or(legacyExtractFrame) * legacyFrameSeconds
	return ThumbnailRequest{
		GenerationID: r.GenerationID,
		VideoURL:     r.VideoURL,
		UserID:       userID,
		Timestamp:    &ts,
		WebhookURL:   r.WebhookURL,
	}
}

// LegacyWatermarkRequest is the watermark body sent by the edge functions.
type LegacyWatermarkRequest struct {
	GenerationID      string      `json:"generation_id" validate:"required"`
	ContentURL        string      `json:"content_url" validate:"required,url"`
	UserID            string      `json:"user_id"`
	WatermarkPosition string      `json:"watermark_position"`
	WatermarkOpacity  *looseFloat `json:"watermark_opacity"`
	WatermarkScale    *looseFloat `json:"watermark_scale"`
	WebhookURL        string      `json:"webhook_url" validate:"omitempty,url"`
}

// toWatermark maps the body onto the current watermark request. Positions
// the service does not support fall back to bottom-center.
func (r LegacyWatermarkRequest) toWatermark() WatermarkRequest {
	userID := r.UserID
	if userID == "" {
		userID = legacyUserID
	}
	position := media.Position(r.WatermarkPosition)
	if !position.Valid() {
		position = media.PositionBottomCenter
	}
	opacity := r.WatermarkOpacity.or(legacyOpacity)
	scale := r.WatermarkScale.or(legacyScale)
	return WatermarkRequest{
		GenerationID: r.GenerationID,
		VideoURL:     r.ContentURL,
		UserID:       userID,
		Position:     string(position),
		Opacity:      &opacity,
		Scale:        &scale,
		WebhookURL:   r.WebhookURL,
	}
}
