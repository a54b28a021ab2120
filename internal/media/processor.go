// Package media provides video probing and transformation on top of the
// ffmpeg and ffprobe command line tools.
package media

import "context"

// Processor defines the media operations a job can invoke.
// Implementations read from src and write the result to dst; they own any
// intermediate files they create and remove them before returning.
type Processor interface {
	// Probe returns container and stream metadata for the file at path.
	Probe(ctx context.Context, path string) (*Metadata, error)

	// ExtractThumbnail writes a single JPEG frame taken at opts.Timestamp.
	ExtractThumbnail(ctx context.Context, src, dst string, opts ThumbnailOptions) error

	// AddWatermark composites overlay on every frame of src and re-encodes
	// the result into dst.
	AddWatermark(ctx context.Context, src, overlay, dst string, opts WatermarkOptions) error

	// Resize re-encodes src at the requested dimensions and bitrate.
	Resize(ctx context.Context, src, dst string, opts ResizeOptions) error

	// Available reports whether the underlying tools can be executed.
	Available(ctx context.Context) bool
}

// ThumbnailOptions configures frame extraction. Zero Width or Height means
// the dimension was not requested.
type ThumbnailOptions struct {
	Timestamp float64
	Width     int
	Height    int
}

// WatermarkOptions configures overlay compositing.
type WatermarkOptions struct {
	Position Position
	// Opacity is multiplied into the overlay's alpha channel, in [0, 1].
	Opacity float64
	// Scale is relative to the overlay's own size, not the frame's.
	Scale float64
}

// ResizeOptions configures a resize transcode. Zero Width or Height means
// the dimension was not requested.
type ResizeOptions struct {
	Width          int
	Height         int
	Bitrate        string
	PreserveAspect bool
}

// Metadata describes a probed media file.
type Metadata struct {
	Duration float64      `json:"duration"`
	Size     int64        `json:"size"`
	BitRate  int64        `json:"bit_rate"`
	Format   string       `json:"format"`
	Video    *VideoStream `json:"video,omitempty"`
	Audio    *AudioStream `json:"audio,omitempty"`
}

// VideoStream holds the properties of the first video stream.
type VideoStream struct {
	Codec   string  `json:"codec"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	FPS     float64 `json:"fps"`
	BitRate int64   `json:"bit_rate"`
}

// AudioStream holds the properties of the first audio stream.
type AudioStream struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitRate    int64  `json:"bit_rate"`
}
