//go:build !linux

package cue

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// malgoOutput keeps one playback device open and swaps the sample buffer
// atomically, so a new cue interrupts the previous one mid-flight. The
// device is rebuilt when the sample rate changes.
type malgoOutput struct {
	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	rate   int

	playBuf atomic.Pointer[[]byte]
	playPos atomic.Uint32
}

// NewOutput returns the platform playback backend.
func NewOutput() (Output, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}
	return &malgoOutput{ctx: ctx}, nil
}

func (o *malgoOutput) ensureDevice(rate int) error {
	if o.device != nil && o.rate == rate {
		return nil
	}
	if o.device != nil {
		o.device.Uninit()
		o.device = nil
	}
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 2
	config.SampleRate = uint32(rate)

	device, err := malgo.InitDevice(o.ctx.Context, config, malgo.DeviceCallbacks{
		Data: o.dataCallback,
	})
	if err != nil {
		return fmt.Errorf("malgo device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("malgo start: %w", err)
	}
	o.device = device
	o.rate = rate
	return nil
}

func (o *malgoOutput) dataCallback(pOutput, _ []byte, frameCount uint32) {
	buf := o.playBuf.Load()
	want := frameCount * 4 // stereo s16
	if buf == nil || len(*buf) == 0 {
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}
	pos := o.playPos.Load()
	total := uint32(len(*buf))
	remaining := total - pos
	if remaining == 0 {
		o.playBuf.Store(nil)
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}
	n := want
	if n > remaining {
		n = remaining
	}
	copy(pOutput[:n], (*buf)[pos:pos+n])
	o.playPos.Store(pos + n)
	for i := n; i < want; i++ {
		pOutput[i] = 0
	}
}

func (o *malgoOutput) Play(s *Sample) error {
	if len(s.Data) == 0 {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctx == nil {
		return fmt.Errorf("output closed")
	}
	if err := o.ensureDevice(s.Rate); err != nil {
		return err
	}
	buf := make([]byte, len(s.Data)*2)
	for i, v := range s.Data {
		buf[i*2] = byte(v)
		buf[i*2+1] = byte(v >> 8)
	}
	o.playPos.Store(0)
	o.playBuf.Store(&buf)
	return nil
}

func (o *malgoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.playBuf.Store(nil)
	if o.device != nil {
		o.device.Uninit()
		o.device = nil
	}
	if o.ctx != nil {
		o.ctx.Uninit()
		o.ctx = nil
	}
	return nil
}
