package audio

import (
	"math"
	"sync"
	"time"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
)

// OscContext is a capture backend that synthesizes a slow amplitude-swept
// sine instead of reading a microphone. It keeps the whole pipeline alive
// on machines with no input device and gives tests a deterministic
// signal. In realtime mode frames are paced at the configured sample
// rate; otherwise they are delivered at roughly 64x speed for tests.
type OscContext struct {
	freq     float64
	realtime bool
}

func NewOscContext(freq float64, realtime bool) *OscContext {
	if freq <= 0 {
		freq = 220
	}
	return &OscContext{freq: freq, realtime: realtime}
}

func (o *OscContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "osc", Name: "synthetic oscillator"}}, nil
}

func (o *OscContext) Close() {}

func (o *OscContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	rate := config.SampleRate
	if rate == 0 {
		rate = SampleRate
	}
	return &OscCapture{
		freq:     o.freq,
		rate:     rate,
		realtime: o.realtime,
	}, nil
}

type OscCapture struct {
	freq     float64
	rate     uint32
	realtime bool

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
}

func (c *OscCapture) SetCallback(cb DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *OscCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

// frame renders fakeFrameSize samples starting at sample offset pos. The
// amplitude sweeps with a 2 s period so waveform frames visibly move.
func (c *OscCapture) frame(pos int) []byte {
	buf := make([]byte, fakeFrameSize*fakeBytesPerFrame)
	for i := 0; i < fakeFrameSize; i++ {
		t := float64(pos+i) / float64(c.rate)
		sweep := 0.55 + 0.45*math.Sin(2*math.Pi*t/2)
		s := int16(math.Sin(2*math.Pi*c.freq*t) * 24000 * sweep)
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

func (c *OscCapture) Start() error {
	c.mu.Lock()
	if c.stopCh != nil {
		select {
		case <-c.stopCh:
		default:
			c.mu.Unlock()
			return nil // already running
		}
	}
	c.stopCh = make(chan struct{})
	c.feedDone = make(chan struct{})
	stop, done := c.stopCh, c.feedDone
	c.mu.Unlock()

	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(c.rate)

	go func() {
		defer close(done)
		pos := 0
		for {
			select {
			case <-stop:
				return
			default:
			}

			c.mu.Lock()
			cb := c.cb
			c.mu.Unlock()
			if cb == nil {
				time.Sleep(time.Millisecond)
				continue
			}

			cb(c.frame(pos), fakeFrameSize)
			pos += fakeFrameSize

			pace := time.Millisecond
			if c.realtime {
				pace = interval
			}
			select {
			case <-stop:
				return
			case <-time.After(pace):
			}
		}
	}()
	return nil
}

func (c *OscCapture) Stop() {
	c.mu.Lock()
	stop, done := c.stopCh, c.feedDone
	c.mu.Unlock()
	if stop == nil {
		return
	}
	select {
	case <-stop:
	default:
		close(stop)
	}
	<-done
}

func (c *OscCapture) Close() {
	c.Stop()
}
