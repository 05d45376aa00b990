//go:build gui

package gui

import (
	"image"
	"image/color"
	"testing"

	"musevoice/waveform"
)

// Ribbon fills that span the full width must stay inside the badge
// circle when the layout is collapsed.
func TestFillRibbonHonorsBadgeClip(t *testing.T) {
	const w, h = 64, 64
	points := make([]waveform.Point, 0, 2*w)
	for x := 0; x < w; x++ {
		points = append(points,
			waveform.Point{X: float64(x), Y: 0},
			waveform.Point{X: float64(x), Y: float64(h - 1)},
		)
	}
	line := color.RGBA{R: 255, A: 255}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRibbon(img, points, w, h, line, badgeClip{})
	if img.RGBAAt(0, 0) != line {
		t.Fatalf("unclipped fill skipped the corner pixel")
	}

	img = image.NewRGBA(image.Rect(0, 0, w, h))
	clip := badgeClip{cx: w / 2, cy: h / 2, r: w / 2}
	fillRibbon(img, points, w, h, line, clip)
	for _, p := range []image.Point{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		if got := img.RGBAAt(p.X, p.Y); got != (color.RGBA{}) {
			t.Errorf("pixel %v outside the badge painted %v, want transparent", p, got)
		}
	}
	if img.RGBAAt(w/2, h/2) != line {
		t.Errorf("center pixel not painted inside the badge")
	}
}
