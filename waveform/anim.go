package waveform

import (
	"math"
	"time"
)

// Anim is the explicit per-frame timing state for the idle/processing
// indicators. The display loop owns one instance and calls Advance every
// refresh; the math stays pure so it can run without a display.
type Anim struct {
	LastTS time.Time
	Phase  float64 // accumulated discrete steps, fractional part in-flight
}

// Advance moves the phase forward by elapsed wall time at stepHz discrete
// steps per second and returns the new phase. The first call only seeds
// the timestamp. A clock that jumps backwards advances nothing.
func (a *Anim) Advance(now time.Time, stepHz float64) float64 {
	if a.LastTS.IsZero() {
		a.LastTS = now
		return a.Phase
	}
	dt := now.Sub(a.LastTS).Seconds()
	a.LastTS = now
	if dt > 0 {
		a.Phase += dt * stepHz
	}
	return a.Phase
}

// Eased maps the raw phase onto its displayed position: each discrete step
// is traversed with a quadratic ease-in/ease-out, so markers snap from
// slot to slot instead of drifting linearly.
func Eased(phase float64) float64 {
	step := math.Floor(phase)
	return step + easeInOutQuad(phase-step)
}

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}

// DotAngles returns the angular positions (radians) of n orbiting markers
// for the processing indicator, offset evenly and rotated by the eased
// phase. n <= 0 yields nil.
func DotAngles(phase float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	base := Eased(phase) * 2 * math.Pi / float64(n)
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = base + float64(i)*2*math.Pi/float64(n)
	}
	return angles
}
