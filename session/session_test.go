package session

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestStatusForState(t *testing.T) {
	cases := []struct {
		state  State
		status Status
		ok     bool
	}{
		{StateIdle, StatusReady, true},
		{StateRecording, StatusRecording, true},
		{StateProcessing, StatusProcessing, true},
		{StateCompleted, StatusReady, true},
		{StateError, StatusReady, true},
		{StateCancelled, StatusReady, true},
		{State("rebooting"), StatusLoading, false},
		{State(""), StatusLoading, false},
	}
	for _, c := range cases {
		got, ok := StatusForState(c.state)
		if got != c.status || ok != c.ok {
			t.Errorf("StatusForState(%q) = (%v, %v), want (%v, %v)",
				c.state, got, ok, c.status, c.ok)
		}
	}
}

type fakeCommander struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
}

func (f *fakeCommander) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeCommander) StartRecording(context.Context) error   { return f.record("start") }
func (f *fakeCommander) StopRecording(context.Context) error    { return f.record("stop") }
func (f *fakeCommander) CancelProcessing(context.Context) error { return f.record("cancel") }
func (f *fakeCommander) RetryLast(context.Context) error        { return f.record("retry") }
func (f *fakeCommander) CopyText(context.Context, string) error { return f.record("copy") }
func (f *fakeCommander) SetModel(context.Context, string) error { return f.record("set-model") }
func (f *fakeCommander) SetRewriteEnabled(context.Context, bool) error {
	return f.record("set-rewrite")
}

func (f *fakeCommander) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestMachine() (*Machine, *fakeCommander, *[]Status) {
	cmd := &fakeCommander{errs: map[string]error{}}
	var seen []Status
	var mu sync.Mutex
	m := NewMachine(cmd, func(s Status) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	return m, cmd, &seen
}

func TestOptimisticStartFromLoading(t *testing.T) {
	m, cmd, _ := newTestMachine()

	m.RequestStart(context.Background())
	if m.Status() != StatusRecording {
		t.Errorf("status = %v, want Recording before any event", m.Status())
	}
	if got := cmd.sent(); len(got) != 1 || got[0] != "start" {
		t.Errorf("sent = %v", got)
	}
}

func TestOptimisticTransitions(t *testing.T) {
	m, cmd, _ := newTestMachine()
	ctx := context.Background()

	m.ApplyState(StateIdle)
	m.RequestStart(ctx)
	if m.Status() != StatusRecording {
		t.Fatalf("after start: %v", m.Status())
	}
	m.RequestStop(ctx)
	if m.Status() != StatusProcessing {
		t.Fatalf("after stop: %v", m.Status())
	}
	m.RequestCancel(ctx)
	if m.Status() != StatusReady {
		t.Fatalf("after cancel: %v", m.Status())
	}
	m.RequestRetry(ctx)
	if m.Status() != StatusProcessing {
		t.Fatalf("after retry: %v", m.Status())
	}

	want := []string{"start", "stop", "cancel", "retry"}
	got := cmd.sent()
	if len(got) != len(want) {
		t.Fatalf("sent = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRequestIgnoredInWrongStatus(t *testing.T) {
	m, cmd, _ := newTestMachine()
	ctx := context.Background()
	m.ApplyState(StateIdle)

	m.RequestStop(ctx)   // not recording
	m.RequestCancel(ctx) // not processing
	if got := cmd.sent(); len(got) != 0 {
		t.Errorf("sent = %v, want none", got)
	}

	m.RequestStart(ctx)
	m.RequestStart(ctx) // duplicate gesture
	if got := cmd.sent(); len(got) != 1 {
		t.Errorf("sent = %v, want single start", got)
	}
}

func TestCommandFailureRevertsToReady(t *testing.T) {
	m, cmd, _ := newTestMachine()
	cmd.errs["start"] = errors.New("engine unreachable")
	m.ApplyState(StateIdle)

	m.RequestStart(context.Background())
	if m.Status() != StatusReady {
		t.Errorf("status = %v, want Ready after failed send", m.Status())
	}
}

func TestConfirmedEventSupersedesGuess(t *testing.T) {
	m, _, _ := newTestMachine()
	m.ApplyState(StateIdle)

	m.RequestStart(context.Background())
	// Engine rejected the start and stayed idle.
	m.ApplyState(StateIdle)
	if m.Status() != StatusReady {
		t.Errorf("status = %v, want Ready", m.Status())
	}
}

func TestApplyErrorForcesReady(t *testing.T) {
	m, _, _ := newTestMachine()
	m.ApplyState(StateIdle)
	m.RequestStart(context.Background())

	m.ApplyError()
	if m.Status() != StatusReady {
		t.Errorf("status = %v, want Ready", m.Status())
	}
}

func TestDuplicateStateIsIdempotent(t *testing.T) {
	m, _, seen := newTestMachine()

	m.ApplyState(StateRecording)
	m.ApplyState(StateRecording)
	m.ApplyState(StateRecording)

	if m.Status() != StatusRecording {
		t.Fatalf("status = %v", m.Status())
	}
	if len(*seen) != 1 {
		t.Errorf("onChange fired %d times, want 1", len(*seen))
	}
}

func TestUnrecognizedStateKeepsStatus(t *testing.T) {
	m, _, _ := newTestMachine()
	m.ApplyState(StateRecording)

	m.ApplyState(State("transcendent"))
	if m.Status() != StatusRecording {
		t.Errorf("status = %v, want Recording untouched", m.Status())
	}
}
