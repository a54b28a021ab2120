// Package job orchestrates the background processing runs: fetch the source,
// transform it, publish the output, record it and notify the caller.
package job

import (
	"errors"
	"fmt"

	"github.com/maauso/ffmpeg-service/internal/media"
	"github.com/maauso/ffmpeg-service/internal/record"
)

// Kind selects the transformation a job performs.
type Kind string

const (
	// KindThumbnail extracts a still frame.
	KindThumbnail Kind = "thumbnail"
	// KindWatermark composites an overlay onto the video.
	KindWatermark Kind = "watermark"
	// KindResize transcodes the video to new dimensions.
	KindResize Kind = "resize"
)

// Dimension bounds accepted by each kind.
const (
	MaxThumbnailWidth  = 1920
	MaxThumbnailHeight = 1080
	MaxResizeWidth     = 3840
	MaxResizeHeight    = 2160
)

// IsValid returns true if the kind is known.
func (k Kind) IsValid() bool {
	return k == KindThumbnail || k == KindWatermark || k == KindResize
}

// Folder is the object store folder outputs of this kind are uploaded to.
func (k Kind) Folder() string {
	switch k {
	case KindThumbnail:
		return "thumbnails"
	case KindWatermark:
		return "watermarked"
	default:
		return "resized"
	}
}

// Column is the record column that receives the output URL.
func (k Kind) Column() record.Column {
	switch k {
	case KindThumbnail:
		return record.ColumnThumbnailURL
	case KindWatermark:
		return record.ColumnWatermarkedURL
	default:
		return record.ColumnResizedURL
	}
}

func (k Kind) outputExt() string {
	if k == KindThumbnail {
		return ".jpg"
	}
	return ".mp4"
}

// Static errors for descriptor validation.
var (
	// ErrInvalidKind is returned for an unknown job kind.
	ErrInvalidKind = errors.New("job: invalid kind")
	// ErrGenerationIDRequired is returned when the correlation id is empty.
	ErrGenerationIDRequired = errors.New("job: generation id is required")
	// ErrUserIDRequired is returned when the owner id is empty.
	ErrUserIDRequired = errors.New("job: user id is required")
	// ErrVideoURLRequired is returned when the source URL is empty.
	ErrVideoURLRequired = errors.New("job: video url is required")
	// ErrInvalidParameters is returned when kind-specific parameters are out of range.
	ErrInvalidParameters = errors.New("job: invalid parameters")
)

// Descriptor describes one unit of work. It is passed by value and never
// modified once scheduled. Only the options matching Kind are read.
type Descriptor struct {
	Kind         Kind
	GenerationID string
	UserID       string
	VideoURL     string
	// NotifyURL receives the completion notification. Empty means none is sent.
	NotifyURL string
	// OverlayURL replaces the built-in watermark when set.
	OverlayURL string

	Thumbnail media.ThumbnailOptions
	Watermark media.WatermarkOptions
	Resize    media.ResizeOptions
}

// Validate checks the descriptor before it is scheduled.
func (d Descriptor) Validate() error {
	if !d.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}
	if d.GenerationID == "" {
		return ErrGenerationIDRequired
	}
	if d.UserID == "" {
		return ErrUserIDRequired
	}
	if d.VideoURL == "" {
		return ErrVideoURLRequired
	}

	switch d.Kind {
	case KindThumbnail:
		t := d.Thumbnail
		if t.Timestamp < 0 {
			return fmt.Errorf("%w: timestamp must not be negative", ErrInvalidParameters)
		}
		if !inRange(t.Width, MaxThumbnailWidth) || !inRange(t.Height, MaxThumbnailHeight) {
			return fmt.Errorf("%w: thumbnail must fit %dx%d", ErrInvalidParameters, MaxThumbnailWidth, MaxThumbnailHeight)
		}
	case KindWatermark:
		w := d.Watermark
		if !w.Position.Valid() {
			return fmt.Errorf("%w: unknown position %q", ErrInvalidParameters, w.Position)
		}
		if w.Opacity < 0 || w.Opacity > 1 {
			return fmt.Errorf("%w: opacity must be between 0 and 1", ErrInvalidParameters)
		}
		if w.Scale <= 0 {
			return fmt.Errorf("%w: scale must be positive", ErrInvalidParameters)
		}
	case KindResize:
		r := d.Resize
		if !inRange(r.Width, MaxResizeWidth) || !inRange(r.Height, MaxResizeHeight) {
			return fmt.Errorf("%w: resize must fit %dx%d", ErrInvalidParameters, MaxResizeWidth, MaxResizeHeight)
		}
	}
	return nil
}

// inRange reports whether an optional dimension is unset or within (0, max].
func inRange(v, maxV int) bool {
	return v >= 0 && v <= maxV
}
