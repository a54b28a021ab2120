package media

// Position names an anchor for the watermark overlay.
type Position string

// Supported overlay anchors.
const (
	PositionBottomCenter Position = "bottom-center"
	PositionLeftCenter   Position = "left-center"
	PositionRightCenter  Position = "right-center"
)

const (
	// bottomMargin is the gap between a bottom-anchored overlay and the frame edge.
	bottomMargin = 50
	// sideMargin is the gap between a side-anchored overlay and the frame edge.
	sideMargin = 10
)

// Valid reports whether p is one of the supported anchors.
func (p Position) Valid() bool {
	switch p {
	case PositionBottomCenter, PositionLeftCenter, PositionRightCenter:
		return true
	default:
		return false
	}
}

// Offset returns the top-left pixel of an overlay of size w x h placed on a
// frame of size frameW x frameH. Unknown positions fall back to bottom-center.
func (p Position) Offset(frameW, frameH, w, h int) (x, y int) {
	switch p {
	case PositionLeftCenter:
		return sideMargin, (frameH - h) / 2
	case PositionRightCenter:
		return frameW - w - sideMargin, (frameH - h) / 2
	default:
		return (frameW - w) / 2, frameH - h - bottomMargin
	}
}

// FitWithin scales srcW x srcH to the largest size that fits inside
// maxW x maxH while keeping the aspect ratio. The tighter axis wins.
func FitWithin(srcW, srcH, maxW, maxH int) (w, h int) {
	if srcW <= 0 || srcH <= 0 {
		return maxW, maxH
	}
	// Compare maxW/srcW against maxH/srcH without floating point.
	if srcW*maxH > srcH*maxW {
		return maxW, atLeastOne(maxW * srcH / srcW)
	}
	return atLeastOne(maxH * srcW / srcH), maxH
}

// ThumbnailSize resolves the output size of a thumbnail. Zero values mean the
// dimension was not requested: neither given keeps the native frame, one given
// derives the other from the source aspect ratio, both given fit within bounds.
func ThumbnailSize(srcW, srcH, w, h int) (int, int) {
	switch {
	case w <= 0 && h <= 0:
		return srcW, srcH
	case srcW <= 0 || srcH <= 0:
		return w, h
	case h <= 0:
		return w, atLeastOne(w * srcH / srcW)
	case w <= 0:
		return atLeastOne(h * srcW / srcH), h
	default:
		return FitWithin(srcW, srcH, w, h)
	}
}

// FitAndPad fits the source inside w x h and returns the scaled size together
// with the padding offsets that centre it on a w x h canvas.
func FitAndPad(srcW, srcH, w, h int) (scaledW, scaledH, padX, padY int) {
	scaledW, scaledH = FitWithin(srcW, srcH, w, h)
	return scaledW, scaledH, (w - scaledW) / 2, (h - scaledH) / 2
}

// atLeastOne keeps a derived axis from collapsing to 0, which ffmpeg's scale
// filter reads as "keep the input size".
func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// evenOrZero rounds a requested axis down to even and keeps 0 as unset.
func evenOrZero(n int) int {
	if n <= 0 {
		return 0
	}
	return even(n)
}

// even rounds n down to an even number, as required by yuv420p encoders.
func even(n int) int {
	if n < 2 {
		return 2
	}
	return n &^ 1
}
