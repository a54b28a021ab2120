package media

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
)

// Default overlay canvas and text settings.
const (
	DefaultOverlayText = "imgMotionMagic"

	overlayWidth    = 400
	overlayHeight   = 120
	overlayFontSize = 48
	shadowOffset    = 2
)

var (
	overlayTextColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 230}
	overlayShadowColor = color.NRGBA{R: 0, G: 0, B: 0, A: 128}
)

// DefaultOverlay is the built-in watermark asset, rendered to disk on first use.
type DefaultOverlay struct {
	path string
	text string
	mu   sync.Mutex
}

// NewDefaultOverlay returns a DefaultOverlay stored at path.
// An empty text uses DefaultOverlayText.
func NewDefaultOverlay(path, text string) *DefaultOverlay {
	if text == "" {
		text = DefaultOverlayText
	}
	return &DefaultOverlay{path: path, text: text}
}

// Path returns the location of the overlay PNG, generating it if absent.
func (o *DefaultOverlay) Path() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := os.Stat(o.path); err == nil {
		return o.path, nil
	}

	dir := filepath.Dir(o.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create overlay directory: %w", err)
	}

	img, err := RenderOverlay(o.text)
	if err != nil {
		return "", err
	}

	// Render next to the target and rename so readers never see a partial file.
	f, err := os.CreateTemp(dir, "overlay-*.png")
	if err != nil {
		return "", fmt.Errorf("create overlay file: %w", err)
	}
	tmp := f.Name()
	_ = f.Close()

	if err := imaging.Save(img, tmp); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("save overlay: %w", err)
	}
	if err := os.Rename(tmp, o.path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("install overlay: %w", err)
	}

	return o.path, nil
}

// RenderOverlay draws text centred on a transparent canvas with a drop shadow.
func RenderOverlay(text string) (*image.NRGBA, error) {
	ttf, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    overlayFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer func() { _ = face.Close() }()

	img := image.NewNRGBA(image.Rect(0, 0, overlayWidth, overlayHeight))
	d := &font.Drawer{Dst: img, Face: face}

	m := face.Metrics()
	x := (fixed.I(overlayWidth) - d.MeasureString(text)) / 2
	y := (fixed.I(overlayHeight) + m.Ascent - m.Descent) / 2

	d.Src = image.NewUniform(overlayShadowColor)
	d.Dot = fixed.Point26_6{X: x + fixed.I(shadowOffset), Y: y + fixed.I(shadowOffset)}
	d.DrawString(text)

	d.Src = image.NewUniform(overlayTextColor)
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(text)

	return img, nil
}

// scaleOverlay resizes the image at path by scale and writes it as a PNG in
// dir. The caller removes the returned file.
func scaleOverlay(path string, scale float64, dir string) (string, int, int, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return "", 0, 0, fmt.Errorf("open overlay: %w", err)
	}

	b := src.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	scaled := imaging.Resize(src, w, h, imaging.Lanczos)

	f, err := os.CreateTemp(dir, "overlay-*.png")
	if err != nil {
		return "", 0, 0, fmt.Errorf("create scaled overlay: %w", err)
	}
	name := f.Name()
	_ = f.Close()

	if err := imaging.Save(scaled, name); err != nil {
		_ = os.Remove(name)
		return "", 0, 0, fmt.Errorf("save scaled overlay: %w", err)
	}
	return name, w, h, nil
}
