package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"musevoice/audio"
)

// Transcriber turns a finished recording into text. The engine treats it
// as a black box so tests and demo mode can swap implementations.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16, model string) (string, error)
}

// SimTranscriber fabricates a deterministic transcript from signal
// statistics. It stands in for a speech-to-text backend in demo mode.
type SimTranscriber struct {
	// Delay simulates backend latency. Zero means no wait.
	Delay time.Duration
	// Fail makes every transcription return an error, for exercising
	// the retry path.
	Fail bool
}

func (s *SimTranscriber) Transcribe(ctx context.Context, samples []int16, model string) (string, error) {
	if s.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.Delay):
		}
	}
	if s.Fail {
		return "", fmt.Errorf("simulated transcription failure")
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("no audio captured")
	}

	var sum float64
	peak := 0.0
	for _, v := range samples {
		f := math.Abs(float64(v)) / 32768
		sum += f * f
		if f > peak {
			peak = f
		}
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	seconds := float64(len(samples)) / float64(audio.SampleRate)
	return fmt.Sprintf("[%s] %.1fs of audio, rms %.3f, peak %.3f.",
		model, seconds, rms, peak), nil
}

// FakeTranscriber returns canned output for tests.
type FakeTranscriber struct {
	Text  string
	Err   error
	Delay time.Duration
}

func (f *FakeTranscriber) Transcribe(ctx context.Context, _ []int16, _ string) (string, error) {
	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.Delay):
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}
