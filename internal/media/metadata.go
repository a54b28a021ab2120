package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFrameRate is returned when a frame rate string is not N or N/D.
var ErrInvalidFrameRate = errors.New("invalid frame rate")

// probeOutput mirrors the parts of `ffprobe -print_format json` we read.
type probeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		BitRate    string `json:"bit_rate"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// parseMetadata converts raw ffprobe JSON into Metadata. Only the first
// video and first audio stream are reported.
func parseMetadata(data []byte) (*Metadata, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	md := &Metadata{
		Duration: parseFloat(out.Format.Duration),
		Size:     parseInt(out.Format.Size),
		BitRate:  parseInt(out.Format.BitRate),
		Format:   out.Format.FormatName,
	}

	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if md.Video != nil {
				continue
			}
			fps, err := ParseFrameRate(s.RFrameRate)
			if err != nil {
				fps = 0
			}
			md.Video = &VideoStream{
				Codec:   s.CodecName,
				Width:   s.Width,
				Height:  s.Height,
				FPS:     fps,
				BitRate: parseInt(s.BitRate),
			}
		case "audio":
			if md.Audio != nil {
				continue
			}
			md.Audio = &AudioStream{
				Codec:      s.CodecName,
				SampleRate: int(parseInt(s.SampleRate)),
				Channels:   s.Channels,
				BitRate:    parseInt(s.BitRate),
			}
		}
	}

	return md, nil
}

// ParseFrameRate converts an ffprobe rational such as "30000/1001" into
// frames per second. A bare number is accepted as is.
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidFrameRate)
	}

	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
	}
	if !found {
		return n, nil
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
	}
	return n / d, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
