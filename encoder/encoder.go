// Package encoder writes captured audio to FLAC so finished recordings
// can be kept on disk for inspection or replay.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encode compresses a whole mono recording in one call.
func Encode(samples []int16) ([]byte, error) {
	e, err := NewFlac()
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(samples); i += BlockSize {
		end := i + BlockSize
		if end > len(samples) {
			end = len(samples)
		}
		if err := e.EncodeBlock(samples[i:end]); err != nil {
			return nil, err
		}
	}
	if err := e.Close(); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}
