// Package waveform turns engine amplitude frames into drawable shapes and
// colors. Everything here is pure math so the display loops (terminal and
// Fyne) stay thin and the visuals stay testable without a real surface.
package waveform

import (
	"image/color"
	"math"
)

// DefaultBins matches the engine's chunking: 2048-sample windows reduced
// to 256 bins of 8-sample RMS.
const DefaultBins = 256

// Frame is one waveform chunk off the wire. Frames replace each other
// wholesale; bins are never accumulated across frames.
type Frame struct {
	Bins   []float64
	AvgRMS float64
}

// Config is the canonical visual parameterization. The source material had
// several diverging variants; everything that varied is a field here.
type Config struct {
	FloorDB    float64    // dynamic range compressed into [0,1], e.g. 40
	MinHalf    float64    // minimum half-height in pixels so silence still draws
	BgCold     color.RGBA // quiet background tint
	BgHot      color.RGBA // loud background tint
	LineCold   color.RGBA // quiet outline
	LineHot    color.RGBA // loud outline
	DotCount   int        // orbiting markers in the processing indicator
	DotStepHz  float64    // discrete steps per second while processing
}

func DefaultConfig() Config {
	return Config{
		FloorDB:   40,
		MinHalf:   1.5,
		BgCold:    color.RGBA{24, 26, 38, 255},
		BgHot:     color.RGBA{64, 18, 28, 255},
		LineCold:  color.RGBA{120, 180, 255, 255},
		LineHot:   color.RGBA{255, 96, 96, 255},
		DotCount:  3,
		DotStepHz: 2.5,
	}
}

// Normalize compresses a linear RMS amplitude into a [0,1] visual level:
// t = clamp((20*log10(max(r, 1e-8)) + floor) / floor, 0, 1). Silence hits
// a hard floor at 0; full scale maps to 1. Never NaN, never negative.
func Normalize(rms, floorDB float64) float64 {
	if floorDB <= 0 {
		floorDB = 40
	}
	db := 20 * math.Log10(math.Max(rms, 1e-8))
	t := (db + floorDB) / floorDB
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Level is the frame's normalized rolling average.
func (f Frame) Level(floorDB float64) float64 {
	return Normalize(f.AvgRMS, floorDB)
}

type Point struct {
	X, Y float64
}

// Ribbon traces the symmetric filled polygon for one frame: the top edge
// left to right, then the mirrored bottom edge right to left. Callers close
// the path. A nil or empty bin slice draws the flat default shape instead
// of skipping the frame.
func Ribbon(bins []float64, width, height, minHalf, floorDB float64) []Point {
	if len(bins) == 0 {
		bins = make([]float64, DefaultBins)
	}
	n := len(bins)
	step := width / float64(max(1, n-1))
	cy := height / 2
	inner := height / 2

	half := func(i int) float64 {
		return math.Max(minHalf, Normalize(bins[i], floorDB)*inner)
	}

	pts := make([]Point, 0, 2*n)
	for i := 0; i < n; i++ {
		pts = append(pts, Point{X: float64(i) * step, Y: cy - half(i)})
	}
	for i := n - 1; i >= 0; i-- {
		pts = append(pts, Point{X: float64(i) * step, Y: cy + half(i)})
	}
	return pts
}

// Grade interpolates linearly between a cold and hot color using the
// normalized rolling level, giving the loudness-reactive tint that is
// independent of the per-bin shape.
func Grade(cold, hot color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.RGBA{
		R: lerp(cold.R, hot.R),
		G: lerp(cold.G, hot.G),
		B: lerp(cold.B, hot.B),
		A: lerp(cold.A, hot.A),
	}
}
