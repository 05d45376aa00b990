package session

import (
	"context"
	"sync"

	"musevoice/log"
)

// Commander is the outbound half of the engine contract. Calls are
// fire-and-forget from the UI's point of view: a nil return only means the
// command was delivered, completion arrives later as an event.
type Commander interface {
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) error
	CancelProcessing(ctx context.Context) error
	RetryLast(ctx context.Context) error
	CopyText(ctx context.Context, text string) error
	SetModel(ctx context.Context, name string) error
	SetRewriteEnabled(ctx context.Context, on bool) error
}

// Machine reconciles the UI status against engine events, hiding command
// round-trip latency with optimistic transitions. A confirmed event always
// supersedes whatever a request guessed.
type Machine struct {
	cmd Commander

	mu       sync.Mutex
	status   Status
	onChange func(Status)
}

// NewMachine starts in StatusLoading; the first confirmed event or
// optimistic request overwrites it. onChange (optional) fires after every
// status change, outside the lock.
func NewMachine(cmd Commander, onChange func(Status)) *Machine {
	return &Machine{cmd: cmd, status: StatusLoading, onChange: onChange}
}

func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// request issues one command with an optimistic transition to `to`.
// Requests from a status outside `from` are ignored (duplicate gestures,
// stale hotkey events). Command failures revert to Ready and are logged,
// never returned: the attempt is over, the UI stays responsive.
func (m *Machine) request(ctx context.Context, name string, from []Status, to Status, send func(context.Context) error) {
	m.mu.Lock()
	cur := m.status
	allowed := false
	for _, f := range from {
		if cur == f {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		log.Warnf("%s ignored in status %s", name, cur)
		return
	}
	m.status = to
	m.mu.Unlock()
	m.notify(to)

	if err := send(ctx); err != nil {
		log.Errorf("%s failed: %v", name, err)
		m.set(StatusReady)
	}
}

// Loading counts as startable: the user may hit the shortcut before the
// first confirmed event arrives.
func (m *Machine) RequestStart(ctx context.Context) {
	m.request(ctx, "start-recording", []Status{StatusReady, StatusLoading}, StatusRecording, m.cmd.StartRecording)
}

func (m *Machine) RequestStop(ctx context.Context) {
	m.request(ctx, "stop-recording", []Status{StatusRecording}, StatusProcessing, m.cmd.StopRecording)
}

func (m *Machine) RequestCancel(ctx context.Context) {
	m.request(ctx, "cancel-processing", []Status{StatusProcessing}, StatusReady, m.cmd.CancelProcessing)
}

func (m *Machine) RequestRetry(ctx context.Context) {
	m.request(ctx, "retry-last", []Status{StatusReady}, StatusProcessing, m.cmd.RetryLast)
}

// ApplyState applies a confirmed engine state. Unrecognized values are a
// logged no-op. Duplicate events are idempotent.
func (m *Machine) ApplyState(st State) {
	next, ok := StatusForState(st)
	if !ok {
		log.Warnf("unrecognized session state %q", st)
		return
	}
	m.set(next)
}

// ApplyError forces Ready; a session-error is terminal for the operation.
// The error message itself is a UI concern and stays with the sink.
func (m *Machine) ApplyError() {
	m.set(StatusReady)
}

func (m *Machine) set(next Status) {
	m.mu.Lock()
	if m.status == next {
		m.mu.Unlock()
		return
	}
	m.status = next
	m.mu.Unlock()
	m.notify(next)
}

func (m *Machine) notify(s Status) {
	if m.onChange != nil {
		m.onChange(s)
	}
}
