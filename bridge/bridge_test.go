package bridge

import (
	"sync"
	"testing"
	"time"

	"musevoice/bus"
	"musevoice/session"
	"musevoice/waveform"
)

type recordingSink struct {
	mu       sync.Mutex
	states   []session.State
	counts   []int
	frames   []waveform.Frame
	texts    []string
	errors   []string
	retries  []bool
	cues     []string
}

func (s *recordingSink) SessionState(st session.State) {
	s.mu.Lock()
	s.states = append(s.states, st)
	s.mu.Unlock()
}

func (s *recordingSink) SampleCount(n int) {
	s.mu.Lock()
	s.counts = append(s.counts, n)
	s.mu.Unlock()
}

func (s *recordingSink) Waveform(f waveform.Frame) {
	s.mu.Lock()
	s.frames = append(s.frames, f)
	s.mu.Unlock()
}

func (s *recordingSink) Transcription(text string) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
}

func (s *recordingSink) SessionError(message string) {
	s.mu.Lock()
	s.errors = append(s.errors, message)
	s.mu.Unlock()
}

func (s *recordingSink) RetryAvailable(ok bool) {
	s.mu.Lock()
	s.retries = append(s.retries, ok)
	s.mu.Unlock()
}

func (s *recordingSink) AudioCue(id string) {
	s.mu.Lock()
	s.cues = append(s.cues, id)
	s.mu.Unlock()
}

type fakeMachine struct {
	mu      sync.Mutex
	applied []session.State
	errored int
}

func (m *fakeMachine) ApplyState(st session.State) {
	m.mu.Lock()
	m.applied = append(m.applied, st)
	m.mu.Unlock()
}

func (m *fakeMachine) ApplyError() {
	m.mu.Lock()
	m.errored++
	m.mu.Unlock()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}

func newTestBridge(t *testing.T) (*bus.MemoryBus, *fakeMachine, *recordingSink, *Bridge) {
	t.Helper()
	b := bus.NewMemoryBus()
	t.Cleanup(func() { b.Close() })
	m := &fakeMachine{}
	sink := &recordingSink{}
	br := Mount(b, m, sink)
	t.Cleanup(br.Close)
	return b, m, sink, br
}

func TestSessionStateReachesMachineAndSink(t *testing.T) {
	b, m, sink, _ := newTestBridge(t)

	b.Publish(bus.EvSessionState, []byte(`"recording"`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.states) == 1
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.applied) != 1 || m.applied[0] != session.StateRecording {
		t.Errorf("machine saw %v", m.applied)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.states[0] != session.StateRecording {
		t.Errorf("sink saw %v", sink.states)
	}
}

func TestUnknownStateDropped(t *testing.T) {
	b, m, sink, _ := newTestBridge(t)

	b.Publish(bus.EvSessionState, []byte(`"daydreaming"`))
	b.Publish(bus.EvSessionState, []byte(`"idle"`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.states) == 1
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.applied) != 1 || m.applied[0] != session.StateIdle {
		t.Errorf("machine saw %v, want only idle", m.applied)
	}
}

func TestSampleCount(t *testing.T) {
	b, _, sink, _ := newTestBridge(t)

	b.Publish(bus.EvSampleCount, []byte(`48000`))
	b.Publish(bus.EvSampleCount, []byte(`-5`))
	b.Publish(bus.EvSampleCount, []byte(`"not a number"`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.counts) == 2
	})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.counts[0] != 48000 || sink.counts[1] != 0 {
		t.Errorf("counts = %v", sink.counts)
	}
}

func TestWaveformChunk(t *testing.T) {
	b, _, sink, _ := newTestBridge(t)

	b.Publish(bus.EvWaveformChunk, []byte(`{"bins":[0.1,0.2,0.3],"avg_rms":0.25}`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.frames) == 1
	})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	f := sink.frames[0]
	if len(f.Bins) != 3 || f.AvgRMS != 0.25 {
		t.Errorf("frame = %+v", f)
	}
}

func TestTranscriptionBothShapes(t *testing.T) {
	b, _, sink, _ := newTestBridge(t)

	b.Publish(bus.EvTranscription, []byte(`"hello there"`))
	b.Publish(bus.EvTranscription, []byte(`{"text":"wrapped"}`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.texts) == 2
	})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.texts[0] != "hello there" || sink.texts[1] != "wrapped" {
		t.Errorf("texts = %v", sink.texts)
	}
}

func TestSessionErrorShapesAndMachineRevert(t *testing.T) {
	b, m, sink, _ := newTestBridge(t)

	b.Publish(bus.EvSessionError, []byte(`{"message":"mic unplugged"}`))
	b.Publish(bus.EvSessionError, []byte(`"plain failure"`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.errors) == 2
	})

	sink.mu.Lock()
	if sink.errors[0] != "mic unplugged" || sink.errors[1] != "plain failure" {
		t.Errorf("errors = %v", sink.errors)
	}
	sink.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errored != 2 {
		t.Errorf("ApplyError called %d times, want 2", m.errored)
	}
}

func TestRetryAvailable(t *testing.T) {
	b, _, sink, _ := newTestBridge(t)

	b.Publish(bus.EvRetryAvailable, []byte(`true`))
	b.Publish(bus.EvRetryAvailable, []byte(`"maybe"`))
	b.Publish(bus.EvRetryAvailable, []byte(`false`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.retries) == 2
	})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if !sink.retries[0] || sink.retries[1] {
		t.Errorf("retries = %v", sink.retries)
	}
}

func TestAudioCue(t *testing.T) {
	b, _, sink, _ := newTestBridge(t)

	b.Publish(bus.EvAudioCue, []byte(`"record-start"`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.cues) == 1
	})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.cues[0] != "record-start" {
		t.Errorf("cues = %v", sink.cues)
	}
}

func TestNoDispatchAfterClose(t *testing.T) {
	b, m, sink, br := newTestBridge(t)

	b.Publish(bus.EvSessionState, []byte(`"recording"`))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.states) == 1
	})

	br.Close()
	b.Publish(bus.EvSessionState, []byte(`"processing"`))
	b.Publish(bus.EvSessionError, []byte(`"late"`))
	time.Sleep(50 * time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(sink.states) != 1 || len(sink.errors) != 0 || m.errored != 0 {
		t.Errorf("events dispatched after close: states=%v errors=%v errored=%d",
			sink.states, sink.errors, m.errored)
	}
}

func TestMountSurvivesSubscribeFailure(t *testing.T) {
	b := bus.NewMemoryBus()
	b.Close() // every Subscribe now fails

	m := &fakeMachine{}
	sink := &recordingSink{}
	br := Mount(b, m, sink)
	defer br.Close()
	// No panic and Close is a no-op on zero subscriptions.
}
