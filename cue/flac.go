package cue

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mewkiz/flac"

	"musevoice/log"
)

// AssetLoader builds a Loader that reads <dir>/<id>.flac and falls back
// to synthesis when the file is missing or malformed.
func AssetLoader(dir string) Loader {
	return func(id string) (*Sample, error) {
		path := filepath.Join(dir, id+".flac")
		if _, err := os.Stat(path); err != nil {
			return Synthesize(id)
		}
		s, err := LoadFLAC(path)
		if err != nil {
			log.Warnf("cue: %s: %v, falling back to synthesis", path, err)
			return Synthesize(id)
		}
		s.ID = id
		return s, nil
	}
}

// LoadFLAC decodes a FLAC file into interleaved stereo int16. Mono input
// is duplicated to both channels, extra channels are ignored, and sample
// depths other than 16 bit are rescaled.
func LoadFLAC(path string) (*Sample, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	if info.NChannels == 0 {
		return nil, fmt.Errorf("%s: no channels", path)
	}
	shift := int(info.BitsPerSample) - 16

	var data []int16
	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		n := len(f.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			left := rescale(f.Subframes[0].Samples[i], shift)
			right := left
			if len(f.Subframes) > 1 {
				right = rescale(f.Subframes[1].Samples[i], shift)
			}
			data = append(data, left, right)
		}
	}
	return &Sample{Rate: int(info.SampleRate), Data: data}, nil
}

func rescale(v int32, shift int) int16 {
	if shift > 0 {
		return int16(v >> shift)
	}
	if shift < 0 {
		return int16(v << -shift)
	}
	return int16(v)
}
