package cue

import (
	"fmt"
	"math"
)

const synthRate = 44100

// Per-cue tone parameters. Decay controls how fast the envelope falls,
// so a higher decay sounds snappier.
const (
	startFreq   = 1200.0
	startVolume = 0.5
	startDecay  = 60.0

	stopFreq   = 900.0
	stopVolume = 0.5
	stopDecay  = 40.0

	errorFreq   = 350.0
	errorVolume = 0.6
	errorDecay  = 30.0

	doneLowFreq  = 880.0
	doneHighFreq = 1320.0
	doneVolume   = 0.45
	doneDecay    = 35.0
)

// Synthesize builds a cue from sine tones. It is the fallback when no
// sample file is available and never fails for a known ID.
func Synthesize(id string) (*Sample, error) {
	var data []int16
	switch id {
	case Start:
		data = tone(startFreq, 0.2, startVolume, startDecay)
	case Stop:
		data = tone(stopFreq, 0.2, stopVolume, stopDecay)
	case Error:
		data = doubleBeep(errorFreq, 0.08, 0.05, errorVolume, errorDecay)
	case Done:
		low := tone(doneLowFreq, 0.12, doneVolume, doneDecay)
		high := tone(doneHighFreq, 0.18, doneVolume, doneDecay)
		data = append(low, high...)
	default:
		return nil, fmt.Errorf("unknown cue %q", id)
	}
	return &Sample{ID: id, Rate: synthRate, Data: data}, nil
}

// tone renders an exponentially decaying sine, interleaved stereo.
func tone(freq, duration, volume, decay float64) []int16 {
	n := int(synthRate * duration)
	samples := make([]int16, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / synthRate
		envelope := math.Exp(-t * decay)
		s := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		samples[i*2] = s
		samples[i*2+1] = s
	}
	return samples
}

func doubleBeep(freq, beepDur, gapDur, volume, decay float64) []int16 {
	beep := tone(freq, beepDur, volume, decay)
	gap := make([]int16, int(synthRate*gapDur)*2)
	result := make([]int16, 0, len(beep)*2+len(gap))
	result = append(result, beep...)
	result = append(result, gap...)
	result = append(result, beep...)
	return result
}
