// Package bridge turns raw engine events into typed calls on the session
// machine and the UI sink. It owns exactly one subscription per contract
// channel and is the only place payload JSON is decoded.
package bridge

import (
	"encoding/json"
	"sync/atomic"

	"musevoice/bus"
	"musevoice/log"
	"musevoice/session"
	"musevoice/waveform"
)

// StateApplier is the slice of the session machine the bridge drives.
type StateApplier interface {
	ApplyState(st session.State)
	ApplyError()
}

// Sink receives decoded events. Implementations must not block; the bus
// delivers each channel on its own goroutine.
type Sink interface {
	SessionState(st session.State)
	SampleCount(n int)
	Waveform(f waveform.Frame)
	Transcription(text string)
	SessionError(message string)
	RetryAvailable(ok bool)
	AudioCue(id string)
}

type Bridge struct {
	bus     bus.Bus
	machine StateApplier
	sink    Sink

	mounted atomic.Bool
	unsubs  []func()
}

// Mount subscribes to every contract channel. A channel that fails to
// subscribe is logged and skipped; the bridge runs with the rest.
func Mount(b bus.Bus, machine StateApplier, sink Sink) *Bridge {
	br := &Bridge{bus: b, machine: machine, sink: sink}
	br.mounted.Store(true)

	for channel, h := range map[string]bus.Handler{
		bus.EvSessionState:   br.onSessionState,
		bus.EvSampleCount:    br.onSampleCount,
		bus.EvWaveformChunk:  br.onWaveformChunk,
		bus.EvTranscription:  br.onTranscription,
		bus.EvSessionError:   br.onSessionError,
		bus.EvRetryAvailable: br.onRetryAvailable,
		bus.EvAudioCue:       br.onAudioCue,
	} {
		unsub, err := b.Subscribe(channel, h)
		if err != nil {
			log.Warnf("bridge: subscribe %s: %v", channel, err)
			continue
		}
		br.unsubs = append(br.unsubs, unsub)
	}
	return br
}

// Close stops dispatch before tearing down subscriptions, so an event
// racing the teardown is dropped rather than delivered half-mounted.
func (br *Bridge) Close() {
	if !br.mounted.CompareAndSwap(true, false) {
		return
	}
	for _, unsub := range br.unsubs {
		unsub()
	}
	br.unsubs = nil
}

func (br *Bridge) onSessionState(payload []byte) {
	if !br.mounted.Load() {
		return
	}
	var raw string
	if err := json.Unmarshal(payload, &raw); err != nil {
		log.Warnf("bridge: bad state payload %q: %v", payload, err)
		return
	}
	st := session.State(raw)
	if _, ok := session.StatusForState(st); !ok {
		log.Warnf("bridge: dropping unknown state %q", raw)
		return
	}
	br.machine.ApplyState(st)
	br.sink.SessionState(st)
}

func (br *Bridge) onSampleCount(payload []byte) {
	if !br.mounted.Load() {
		return
	}
	var n int
	if err := json.Unmarshal(payload, &n); err != nil {
		log.Warnf("bridge: bad sample count %q: %v", payload, err)
		return
	}
	if n < 0 {
		n = 0
	}
	br.sink.SampleCount(n)
}

type waveformChunk struct {
	Bins   []float64 `json:"bins"`
	AvgRMS float64   `json:"avg_rms"`
}

func (br *Bridge) onWaveformChunk(payload []byte) {
	if !br.mounted.Load() {
		return
	}
	var c waveformChunk
	if err := json.Unmarshal(payload, &c); err != nil {
		log.Warnf("bridge: bad waveform chunk: %v", err)
		return
	}
	br.sink.Waveform(waveform.Frame{Bins: c.Bins, AvgRMS: c.AvgRMS})
}

func (br *Bridge) onTranscription(payload []byte) {
	if !br.mounted.Load() {
		return
	}
	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		// Older engines wrapped the text in an object.
		var obj struct {
			Text string `json:"text"`
		}
		if err2 := json.Unmarshal(payload, &obj); err2 != nil {
			log.Warnf("bridge: bad transcription payload: %v", err)
			return
		}
		text = obj.Text
	}
	br.sink.Transcription(text)
}

func (br *Bridge) onSessionError(payload []byte) {
	if !br.mounted.Load() {
		return
	}
	var msg string
	if err := json.Unmarshal(payload, &msg); err != nil {
		var obj struct {
			Message string `json:"message"`
		}
		if err2 := json.Unmarshal(payload, &obj); err2 != nil {
			log.Warnf("bridge: bad error payload: %v", err)
			msg = "unknown engine error"
		} else {
			msg = obj.Message
		}
	}
	br.machine.ApplyError()
	br.sink.SessionError(msg)
}

func (br *Bridge) onRetryAvailable(payload []byte) {
	if !br.mounted.Load() {
		return
	}
	var ok bool
	if err := json.Unmarshal(payload, &ok); err != nil {
		log.Warnf("bridge: bad retry payload %q: %v", payload, err)
		return
	}
	br.sink.RetryAvailable(ok)
}

func (br *Bridge) onAudioCue(payload []byte) {
	if !br.mounted.Load() {
		return
	}
	var id string
	if err := json.Unmarshal(payload, &id); err != nil {
		log.Warnf("bridge: bad cue payload %q: %v", payload, err)
		return
	}
	br.sink.AudioCue(id)
}
