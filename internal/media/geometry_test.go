package media

import "testing"

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"width constrained", 1920, 1080, 640, 640, 640, 360},
		{"height constrained", 1080, 1920, 640, 640, 360, 640},
		{"exact ratio", 1920, 1080, 1280, 720, 1280, 720},
		{"upscale", 320, 240, 800, 800, 800, 600},
		{"unknown source", 0, 0, 640, 480, 640, 480},
		{"tiny width bound", 1920, 1080, 1, 1, 1, 1},
		{"tiny height bound", 1080, 1920, 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.srcW, tt.srcH, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitWithin() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"native frame", 0, 0, 1920, 1080},
		{"width only", 640, 0, 640, 360},
		{"height only", 0, 360, 640, 360},
		{"both fits within", 640, 640, 640, 360},
		{"derived height never zero", 1, 0, 1, 1},
		{"derived width never zero", 0, 1, 1, 1},
		{"tiny box", 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ThumbnailSize(1920, 1080, tt.w, tt.h)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ThumbnailSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitAndPad(t *testing.T) {
	sw, sh, px, py := FitAndPad(1920, 1080, 800, 600)
	if sw != 800 || sh != 450 {
		t.Errorf("scaled = %dx%d, want 800x450", sw, sh)
	}
	if px != 0 || py != 75 {
		t.Errorf("padding = (%d,%d), want (0,75)", px, py)
	}
}

func TestPosition_Offset(t *testing.T) {
	tests := []struct {
		pos          Position
		wantX, wantY int
	}{
		{PositionLeftCenter, 10, 350},
		{PositionRightCenter, 890, 350},
		{PositionBottomCenter, 450, 650},
		{Position("top-left"), 450, 650},
	}

	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			x, y := tt.pos.Offset(1000, 800, 100, 100)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Offset() = (%d,%d), want (%d,%d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestPosition_Valid(t *testing.T) {
	for _, p := range []Position{PositionBottomCenter, PositionLeftCenter, PositionRightCenter} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if Position("bottom-right").Valid() {
		t.Error("bottom-right should not be valid")
	}
}

func TestEven(t *testing.T) {
	cases := map[int]int{0: 2, 1: 2, 2: 2, 451: 450, 800: 800}
	for in, want := range cases {
		if got := even(in); got != want {
			t.Errorf("even(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestEvenOrZero(t *testing.T) {
	cases := map[int]int{-2: 0, 0: 0, 1: 2, 801: 800, 3840: 3840}
	for in, want := range cases {
		if got := evenOrZero(in); got != want {
			t.Errorf("evenOrZero(%d) = %d, want %d", in, got, want)
		}
	}
}
