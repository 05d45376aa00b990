package engine

import "math"

// Waveform chunk geometry: each 2048-sample capture window is reduced to
// 256 bins of 8-sample RMS plus the RMS of the whole window.
const (
	WindowSamples = 2048
	Bins          = 256
	binSamples    = WindowSamples / Bins
)

type chunk struct {
	bins   []float64
	avgRMS float64
}

// chunker accumulates capture samples and emits one chunk per full
// window. Leftover samples stay buffered for the next feed.
type chunker struct {
	buf []int16
}

func (c *chunker) reset() {
	c.buf = c.buf[:0]
}

func (c *chunker) feed(samples []int16) []chunk {
	c.buf = append(c.buf, samples...)
	var out []chunk
	for len(c.buf) >= WindowSamples {
		out = append(out, reduceWindow(c.buf[:WindowSamples]))
		c.buf = append(c.buf[:0], c.buf[WindowSamples:]...)
	}
	return out
}

func reduceWindow(window []int16) chunk {
	bins := make([]float64, Bins)
	var winSum float64
	for b := 0; b < Bins; b++ {
		var sum float64
		for i := 0; i < binSamples; i++ {
			v := float64(window[b*binSamples+i]) / 32768
			sum += v * v
		}
		bins[b] = math.Sqrt(sum / binSamples)
		winSum += sum
	}
	return chunk{
		bins:   bins,
		avgRMS: math.Sqrt(winSum / WindowSamples),
	}
}
