package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Static errors for media operations.
var (
	// ErrInvalidDimensions is returned when a requested dimension is negative.
	ErrInvalidDimensions = errors.New("invalid dimensions: width and height must not be negative")
	// ErrInvalidTimestamp is returned when a seek offset is negative.
	ErrInvalidTimestamp = errors.New("invalid timestamp: must not be negative")
	// ErrInvalidOpacity is returned when opacity is outside [0, 1].
	ErrInvalidOpacity = errors.New("invalid opacity: must be between 0 and 1")
	// ErrInvalidScale is returned when the overlay scale is not positive.
	ErrInvalidScale = errors.New("invalid scale: must be positive")
	// ErrNoVideoStream is returned when a probed file has no video stream.
	ErrNoVideoStream = errors.New("no video stream found")
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
)

// FFmpegProcessor implements Processor using the ffmpeg and ffprobe CLIs.
type FFmpegProcessor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
// Empty paths default to "ffmpeg" and "ffprobe" found via PATH.
func NewFFmpegProcessor(ffmpegPath, ffprobePath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Available reports whether ffmpeg can be executed.
func (p *FFmpegProcessor) Available(ctx context.Context) bool {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, "-version")
	return cmd.Run() == nil
}

// Probe returns metadata for the media file at path.
func (p *FFmpegProcessor) Probe(ctx context.Context, path string) (*Metadata, error) {
	out, err := p.runFFprobe(ctx, []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	})
	if err != nil {
		return nil, err
	}
	return parseMetadata(out)
}

// frameSize returns the dimensions of the first video stream.
func (p *FFmpegProcessor) frameSize(ctx context.Context, path string) (int, int, error) {
	md, err := p.Probe(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	if md.Video == nil || md.Video.Width <= 0 || md.Video.Height <= 0 {
		return 0, 0, ErrNoVideoStream
	}
	return md.Video.Width, md.Video.Height, nil
}

// ExtractThumbnail writes a single JPEG frame taken at opts.Timestamp.
// When the source cannot be probed the scaling is delegated to ffmpeg
// expressions with the same semantics.
func (p *FFmpegProcessor) ExtractThumbnail(ctx context.Context, src, dst string, opts ThumbnailOptions) error {
	if opts.Timestamp < 0 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidTimestamp, opts.Timestamp)
	}
	if opts.Width < 0 || opts.Height < 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}

	var filter string
	if opts.Width > 0 || opts.Height > 0 {
		srcW, srcH, err := p.frameSize(ctx, src)
		if err == nil {
			w, h := ThumbnailSize(srcW, srcH, opts.Width, opts.Height)
			filter = fmt.Sprintf("scale=%d:%d", w, h)
		} else {
			filter = thumbnailScaleExpr(opts.Width, opts.Height)
		}
	}

	return p.runFFmpeg(ctx, thumbnailArgs(src, dst, opts.Timestamp, filter))
}

// AddWatermark scales the overlay by opts.Scale, places it according to
// opts.Position and composites it at opts.Opacity on every frame.
func (p *FFmpegProcessor) AddWatermark(ctx context.Context, src, overlay, dst string, opts WatermarkOptions) error {
	if opts.Opacity < 0 || opts.Opacity > 1 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidOpacity, opts.Opacity)
	}
	if opts.Scale <= 0 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidScale, opts.Scale)
	}

	scaled, w, h, err := scaleOverlay(overlay, opts.Scale, filepath.Dir(dst))
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(scaled) }()

	placement := opts.Position.expr()
	if frameW, frameH, err := p.frameSize(ctx, src); err == nil {
		x, y := opts.Position.Offset(frameW, frameH, w, h)
		placement = fmt.Sprintf("%d:%d", x, y)
	}

	return p.runFFmpeg(ctx, watermarkArgs(src, scaled, dst, watermarkFilter(opts.Opacity, placement)))
}

// Resize re-encodes src at the requested size. With both dimensions and
// PreserveAspect set, the frame is fitted inside the target and padded to
// the exact size. Odd targets are rounded down to even for yuv420p.
func (p *FFmpegProcessor) Resize(ctx context.Context, src, dst string, opts ResizeOptions) error {
	if opts.Width < 0 || opts.Height < 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}

	srcW, srcH := 0, 0
	if opts.Width > 0 && opts.Height > 0 && opts.PreserveAspect {
		if w, h, err := p.frameSize(ctx, src); err == nil {
			srcW, srcH = w, h
		}
	}
	filter := resizeFilter(srcW, srcH, evenOrZero(opts.Width), evenOrZero(opts.Height), opts.PreserveAspect)

	return p.runFFmpeg(ctx, resizeArgs(src, dst, filter, opts.Bitrate))
}

// expr returns the ffmpeg overlay expression equivalent to Offset.
func (p Position) expr() string {
	switch p {
	case PositionLeftCenter:
		return fmt.Sprintf("%d:(H-h)/2", sideMargin)
	case PositionRightCenter:
		return fmt.Sprintf("W-w-%d:(H-h)/2", sideMargin)
	default:
		return fmt.Sprintf("(W-w)/2:H-h-%d", bottomMargin)
	}
}

func thumbnailScaleExpr(w, h int) string {
	switch {
	case w > 0 && h > 0:
		return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", w, h)
	case w > 0:
		return fmt.Sprintf("scale=%d:-1", w)
	default:
		return fmt.Sprintf("scale=-1:%d", h)
	}
}

// resizeFilter builds the scale filter for an even target. A zero axis is
// derived by ffmpeg; a zero source size means the input was not probed.
func resizeFilter(srcW, srcH, w, h int, preserve bool) string {
	switch {
	case w > 0 && h > 0 && preserve:
		if srcW > 0 && srcH > 0 {
			return fitAndPadFilter(srcW, srcH, w, h)
		}
		return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease:force_divisible_by=2,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
			w, h, w, h)
	case w > 0 && h > 0:
		return fmt.Sprintf("scale=%d:%d", w, h)
	case w > 0:
		return fmt.Sprintf("scale=%d:-2", w)
	case h > 0:
		return fmt.Sprintf("scale=-2:%d", h)
	default:
		return ""
	}
}

func fitAndPadFilter(srcW, srcH, w, h int) string {
	sw, sh, _, _ := FitAndPad(srcW, srcH, w, h)
	sw, sh = even(sw), even(sh)
	return fmt.Sprintf("scale=%d:%d,pad=%d:%d:%d:%d:black", sw, sh, w, h, (w-sw)/2, (h-sh)/2)
}

func watermarkFilter(opacity float64, placement string) string {
	return fmt.Sprintf("[1:v]format=rgba,colorchannelmixer=aa=%s[watermark];[0:v][watermark]overlay=%s",
		strconv.FormatFloat(opacity, 'f', -1, 64), placement)
}

// encodeArgs are the H.264/AAC output settings shared by every transcode.
var encodeArgs = []string{
	"-c:v", "libx264",
	"-c:a", "aac",
	"-preset", "medium",
	"-crf", "23",
	"-movflags", "+faststart",
}

func thumbnailArgs(src, dst string, ts float64, filter string) []string {
	args := []string{
		"-y",
		"-ss", strconv.FormatFloat(ts, 'f', -1, 64),
		"-i", src,
		"-vframes", "1",
		"-f", "image2",
		"-vcodec", "mjpeg",
		"-q:v", "2",
	}
	if filter != "" {
		args = append(args, "-vf", filter)
	}
	return append(args, dst)
}

func watermarkArgs(src, overlay, dst, filter string) []string {
	args := []string{
		"-y",
		"-i", src,
		"-i", overlay,
		"-filter_complex", filter,
	}
	args = append(args, encodeArgs...)
	return append(args, dst)
}

func resizeArgs(src, dst, filter, bitrate string) []string {
	args := []string{"-y", "-i", src}
	if filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args, encodeArgs...)
	if bitrate != "" {
		args = append(args, "-b:v", bitrate)
	}
	return append(args, dst)
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// runFFprobe executes ffprobe and returns its stdout.
func (p *FFmpegProcessor) runFFprobe(ctx context.Context, args []string) ([]byte, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
