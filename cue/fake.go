package cue

import "sync"

// FakeOutput records plays instead of producing sound. Tests can queue
// failures to exercise the retry path.
type FakeOutput struct {
	mu       sync.Mutex
	played   []string
	failures int
	failErr  error
	closed   bool
}

func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// FailNext makes the next n Play calls return err.
func (f *FakeOutput) FailNext(n int, err error) {
	f.mu.Lock()
	f.failures = n
	f.failErr = err
	f.mu.Unlock()
}

func (f *FakeOutput) Play(s *Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return f.failErr
	}
	f.played = append(f.played, s.ID)
	return nil
}

// Played returns a copy of the cue IDs played so far.
func (f *FakeOutput) Played() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}
