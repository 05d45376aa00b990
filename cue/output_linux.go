//go:build linux

package cue

import (
	"fmt"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// pulseOutput plays through PulseAudio, one short-lived stream per cue.
// A newer Play supersedes the running one via the generation counter.
type pulseOutput struct {
	gen atomic.Uint64
}

// NewOutput returns the platform playback backend.
func NewOutput() (Output, error) {
	return &pulseOutput{}, nil
}

func (o *pulseOutput) Play(s *Sample) error {
	if len(s.Data) == 0 {
		return nil
	}
	myGen := o.gen.Add(1)

	c, err := pulse.NewClient()
	if err != nil {
		return fmt.Errorf("pulse client: %w", err)
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if o.gen.Load() != myGen || pos >= len(s.Data) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, s.Data[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(s.Rate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return fmt.Errorf("pulse playback: %w", err)
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
	return nil
}

func (o *pulseOutput) Close() error {
	o.gen.Add(1)
	return nil
}
