package encoder

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"musevoice/cue"
)

func sineSamples(n int, freq float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(12000 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

func TestEncodeProducesFLAC(t *testing.T) {
	samples := sineSamples(SampleRate, 440) // one second

	data, err := Encode(samples)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
	rawSize := len(samples) * 2
	if len(data) >= rawSize {
		t.Errorf("no compression: raw %d bytes, flac %d bytes", rawSize, len(data))
	}
}

func TestFlacEncoderEmpty(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close on empty encoder: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
	if len(enc.Bytes()) == 0 {
		t.Error("expected non-empty FLAC output (at least header)")
	}
}

func TestFlacEncoderPartialBlock(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	partial := make([]int16, BlockSize/4)
	for i := range partial {
		partial[i] = int16(i % 1000)
	}

	if err := enc.EncodeBlock(partial); err != nil {
		t.Fatalf("EncodeBlock partial: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != uint64(len(partial)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(partial))
	}
}

// The cue loader reads the same format the dump writer produces, which
// gives us a full decode check without a reference decoder.
func TestEncodeRoundTrip(t *testing.T) {
	samples := sineSamples(4000, 300)

	data, err := Encode(samples)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	path := filepath.Join(t.TempDir(), "roundtrip.flac")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := cue.LoadFLAC(path)
	if err != nil {
		t.Fatalf("LoadFLAC: %v", err)
	}
	if s.Rate != SampleRate {
		t.Errorf("rate = %d, want %d", s.Rate, SampleRate)
	}
	// Mono input comes back as interleaved stereo.
	if len(s.Data) != len(samples)*2 {
		t.Fatalf("decoded %d samples, want %d", len(s.Data), len(samples)*2)
	}
	for i, want := range samples {
		if s.Data[i*2] != want || s.Data[i*2+1] != want {
			t.Fatalf("sample %d: got (%d, %d), want %d", i, s.Data[i*2], s.Data[i*2+1], want)
		}
	}
}
