// Package cue plays the short feedback sounds that mark session
// transitions. Playback is best effort: a cue that cannot be played is
// retried, then dropped, and never surfaces as a user-visible error.
package cue

import (
	"fmt"
	"sync"
	"time"

	"musevoice/log"
)

// Cue identifiers, matching the audio-cue event payloads.
const (
	Start = "record-start"
	Stop  = "record-stop"
	Error = "error"
	Done  = "done"
)

// All lists every known cue.
var All = []string{Start, Stop, Error, Done}

// Sample is decoded audio ready for playback, interleaved stereo int16.
type Sample struct {
	ID   string
	Rate int
	Data []int16
}

// Output plays one sample. Starting a new sample interrupts whatever is
// currently playing and starts from the beginning.
type Output interface {
	Play(s *Sample) error
	Close() error
}

// Loader resolves a cue ID to its sample data.
type Loader func(id string) (*Sample, error)

const (
	debounceWindow = 150 * time.Millisecond
	retryStep      = 50 * time.Millisecond
	maxRetries     = 3
)

// Player debounces and plays cues. Safe for concurrent use.
type Player struct {
	out  Output
	load Loader

	mu      sync.Mutex
	samples map[string]*Sample
	last    map[string]time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewPlayer preloads every known cue. A cue that fails to load is kept
// empty and loaded again on first play.
func NewPlayer(out Output, load Loader) *Player {
	p := &Player{
		out:     out,
		load:    load,
		samples: make(map[string]*Sample),
		last:    make(map[string]time.Time),
		now:     time.Now,
		sleep:   time.Sleep,
	}
	for _, id := range All {
		s, err := load(id)
		if err != nil {
			log.Warnf("cue: preload %s: %v", id, err)
			continue
		}
		p.samples[id] = s
	}
	return p
}

// Play schedules a cue. Calls within the debounce window of the previous
// accepted call for the same cue are dropped; the window is judged
// against the timestamp recorded before this call.
func (p *Player) Play(id string) {
	p.mu.Lock()
	now := p.now()
	if last, ok := p.last[id]; ok && now.Sub(last) < debounceWindow {
		p.mu.Unlock()
		return
	}
	p.last[id] = now
	s := p.samples[id]
	p.mu.Unlock()

	go p.playWithRetry(id, s)
}

func (p *Player) playWithRetry(id string, s *Sample) {
	if s == nil {
		var err error
		if s, err = p.reload(id); err != nil {
			log.Warnf("cue: %s unavailable: %v", id, err)
			return
		}
	}

	err := p.out.Play(s)
	if err == nil {
		return
	}
	for i := 1; i <= maxRetries; i++ {
		p.sleep(time.Duration(i) * retryStep)
		if err = p.out.Play(s); err == nil {
			return
		}
	}

	// Last resort: the sample itself may be stale, reload and try once.
	fresh, lerr := p.reload(id)
	if lerr == nil {
		if perr := p.out.Play(fresh); perr == nil {
			return
		}
	}
	log.Warnf("cue: giving up on %s: %v", id, err)
}

func (p *Player) reload(id string) (*Sample, error) {
	s, err := p.load(id)
	if err != nil {
		return nil, fmt.Errorf("load cue %s: %w", id, err)
	}
	p.mu.Lock()
	p.samples[id] = s
	p.mu.Unlock()
	return s, nil
}

func (p *Player) Close() error {
	return p.out.Close()
}
