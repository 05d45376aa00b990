package hotkey

import (
	"sync/atomic"
	"time"
)

type Mode string

const (
	ModePTT    Mode = "ptt"
	ModeToggle Mode = "toggle"
)

// StartEvent signals that a recording should start.
type StartEvent struct {
	Mode Mode
}

// Hybrid layers tap-to-toggle and hold-to-talk on one key combination.
// A press always starts recording immediately; whether the release stops
// it depends on how long the key was held. Holding past the threshold is
// push-to-talk, a shorter tap arms toggle mode and the next tap stops.
type Hybrid struct {
	startCh chan StartEvent
	stopCh  chan struct{}
	toggled atomic.Bool
}

// NewHybrid drives hk with the given long-press threshold.
func NewHybrid(hk Hotkey, longPress time.Duration) *Hybrid {
	h := &Hybrid{
		startCh: make(chan StartEvent, 1),
		stopCh:  make(chan struct{}, 1),
	}
	go h.run(hk, longPress)
	return h
}

// Start signals when to begin recording.
func (h *Hybrid) Start() <-chan StartEvent { return h.startCh }

// StopChan signals when to stop, for both modes.
func (h *Hybrid) StopChan() <-chan struct{} { return h.stopCh }

// IsToggle reports whether the current recording is toggle-armed.
func (h *Hybrid) IsToggle() bool { return h.toggled.Load() }

func (h *Hybrid) run(hk Hotkey, longPress time.Duration) {
	for {
		// Idle: any press starts recording right away. The hold length
		// only decides what the release means.
		<-hk.Keydown()
		h.toggled.Store(false)
		h.startCh <- StartEvent{Mode: ModeToggle}

		timer := time.NewTimer(longPress)
		select {
		case <-timer.C:
			// Held past the threshold: push-to-talk, release stops.
			<-hk.Keyup()
			h.signalStop()
		case <-hk.Keyup():
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			// Short tap: stay recording until the next press+release.
			h.toggled.Store(true)
			<-hk.Keydown()
			<-hk.Keyup()
			h.signalStop()
		}
	}
}

func (h *Hybrid) signalStop() {
	select {
	case h.stopCh <- struct{}{}:
	default:
	}
}
