package waveform

import (
	"image/color"
	"math"
	"testing"
	"time"
)

func TestNormalizeSilence(t *testing.T) {
	got := Normalize(0, 40)
	if got != 0 {
		t.Errorf("Normalize(0) = %v, want 0", got)
	}
	if math.IsNaN(got) {
		t.Error("Normalize(0) is NaN")
	}
}

func TestNormalizeFullScale(t *testing.T) {
	if got := Normalize(1.0, 40); got != 1 {
		t.Errorf("Normalize(1.0) = %v, want 1", got)
	}
	// Above full scale still clamps
	if got := Normalize(4.2, 40); got != 1 {
		t.Errorf("Normalize(4.2) = %v, want 1", got)
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	prev := -1.0
	for _, r := range []float64{0, 1e-6, 1e-4, 0.001, 0.01, 0.1, 0.5, 1.0} {
		got := Normalize(r, 40)
		if got < prev {
			t.Fatalf("Normalize not monotonic at %v: %v < %v", r, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("Normalize(%v) = %v out of [0,1]", r, got)
		}
		prev = got
	}
}

func TestNormalizeRangeMidpoint(t *testing.T) {
	// -20 dB (r = 0.1) with a 40 dB floor sits at 0.5.
	got := Normalize(0.1, 40)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Normalize(0.1, 40) = %v, want 0.5", got)
	}
}

func TestRibbonShape(t *testing.T) {
	bins := []float64{0, 0.1, 1.0, 0.1}
	pts := Ribbon(bins, 300, 100, 2, 40)
	if len(pts) != 2*len(bins) {
		t.Fatalf("got %d points, want %d", len(pts), 2*len(bins))
	}
	// Top edge runs left to right, bottom edge right to left.
	if pts[0].X != 0 || pts[len(bins)-1].X != 300 {
		t.Errorf("top edge endpoints wrong: %v .. %v", pts[0], pts[len(bins)-1])
	}
	if pts[len(bins)].X != 300 || pts[len(pts)-1].X != 0 {
		t.Errorf("bottom edge endpoints wrong: %v .. %v", pts[len(bins)], pts[len(pts)-1])
	}
	// Symmetric around the midline.
	for i := range bins {
		top := pts[i]
		bot := pts[len(pts)-1-i]
		if top.X != bot.X {
			t.Errorf("bin %d x mismatch: %v vs %v", i, top.X, bot.X)
		}
		if math.Abs((50-top.Y)-(bot.Y-50)) > 1e-9 {
			t.Errorf("bin %d not mirrored: top %v bottom %v", i, top.Y, bot.Y)
		}
	}
}

func TestRibbonSilenceUsesMinHalf(t *testing.T) {
	pts := Ribbon([]float64{0, 0, 0}, 100, 100, 3, 40)
	for _, p := range pts {
		if math.Abs(p.Y-50) < 3-1e-9 {
			t.Errorf("point %v inside the minimum half-height band", p)
		}
	}
}

func TestRibbonEmptyBins(t *testing.T) {
	pts := Ribbon(nil, 100, 100, 2, 40)
	if len(pts) != 2*DefaultBins {
		t.Fatalf("got %d points, want %d", len(pts), 2*DefaultBins)
	}
}

func TestRibbonSingleBin(t *testing.T) {
	// Must not divide by zero when computing the horizontal step.
	pts := Ribbon([]float64{0.5}, 100, 100, 2, 40)
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) {
			t.Fatalf("bad point %v", p)
		}
	}
}

func TestGradeEndpoints(t *testing.T) {
	cold := color.RGBA{0, 0, 0, 255}
	hot := color.RGBA{255, 100, 0, 255}
	if got := Grade(cold, hot, 0); got != cold {
		t.Errorf("Grade(0) = %v, want cold", got)
	}
	if got := Grade(cold, hot, 1); got != hot {
		t.Errorf("Grade(1) = %v, want hot", got)
	}
	mid := Grade(cold, hot, 0.5)
	if mid.R != 128 && mid.R != 127 {
		t.Errorf("Grade(0.5).R = %d, want ~127", mid.R)
	}
	// Out-of-range factors clamp instead of wrapping.
	if got := Grade(cold, hot, 2.5); got != hot {
		t.Errorf("Grade(2.5) = %v, want hot", got)
	}
}

func TestAnimAdvance(t *testing.T) {
	var a Anim
	t0 := time.Unix(100, 0)
	if p := a.Advance(t0, 2); p != 0 {
		t.Errorf("first advance = %v, want 0", p)
	}
	if p := a.Advance(t0.Add(500*time.Millisecond), 2); math.Abs(p-1.0) > 1e-9 {
		t.Errorf("phase = %v, want 1.0", p)
	}
	// Backwards clock advances nothing.
	if p := a.Advance(t0, 2); math.Abs(p-1.0) > 1e-9 {
		t.Errorf("phase after backwards clock = %v, want 1.0", p)
	}
}

func TestEased(t *testing.T) {
	// Step boundaries pass through unchanged.
	for _, p := range []float64{0, 1, 2, 7} {
		if got := Eased(p); math.Abs(got-p) > 1e-9 {
			t.Errorf("Eased(%v) = %v", p, got)
		}
	}
	// Mid-step is exactly halfway, slow at the edges.
	if got := Eased(3.5); math.Abs(got-3.5) > 1e-9 {
		t.Errorf("Eased(3.5) = %v, want 3.5", got)
	}
	if got := Eased(3.1); got >= 3.1 {
		t.Errorf("Eased(3.1) = %v, want < 3.1 (ease-in)", got)
	}
	if got := Eased(3.9); got <= 3.9 {
		t.Errorf("Eased(3.9) = %v, want > 3.9 (ease-out)", got)
	}
}

func TestDotAngles(t *testing.T) {
	angles := DotAngles(0, 3)
	if len(angles) != 3 {
		t.Fatalf("got %d angles, want 3", len(angles))
	}
	gap := angles[1] - angles[0]
	if math.Abs(gap-2*math.Pi/3) > 1e-9 {
		t.Errorf("gap = %v, want 2π/3", gap)
	}
	if DotAngles(1, 0) != nil {
		t.Error("expected nil for zero dots")
	}
}

func TestLayoutFor(t *testing.T) {
	cases := []struct {
		w, h float64
		want LayoutMode
	}{
		{60, 100, LayoutCollapsed},
		{100, 60, LayoutHorizontallyCollapsed},
		{100, 100, LayoutExpanded},
		{60, 60, LayoutHorizontallyCollapsed}, // height wins
		{72, 72, LayoutExpanded},              // thresholds are exclusive
	}
	for _, c := range cases {
		if got := LayoutFor(c.w, c.h); got != c.want {
			t.Errorf("LayoutFor(%v, %v) = %v, want %v", c.w, c.h, got, c.want)
		}
	}
}
