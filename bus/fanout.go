package bus

import (
	"sync"

	"musevoice/log"
)

const subQueueDepth = 128

// sub owns one handler and its delivery queue. Events for the same
// subscription run in order on a single goroutine.
type sub struct {
	channel string
	h       Handler
	queue   chan []byte
	done    chan struct{}
	once    sync.Once
}

func newSub(channel string, h Handler) *sub {
	s := &sub{
		channel: channel,
		h:       h,
		queue:   make(chan []byte, subQueueDepth),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *sub) run() {
	for {
		select {
		case <-s.done:
			return
		case p := <-s.queue:
			s.h(p)
		}
	}
}

// deliver never blocks the publisher. When the queue is full the event is
// dropped; sample-count and waveform-chunk tolerate gaps and the rest are
// low rate.
func (s *sub) deliver(payload []byte) {
	select {
	case <-s.done:
	case s.queue <- payload:
	default:
		log.Warnf("bus: dropping event on %s, subscriber backed up", s.channel)
	}
}

func (s *sub) stop() {
	s.once.Do(func() { close(s.done) })
}

// fanout is the subscription table shared by the in-memory and websocket
// transports.
type fanout struct {
	mu   sync.Mutex
	subs map[string][]*sub
}

func newFanout() *fanout {
	return &fanout{subs: make(map[string][]*sub)}
}

func (f *fanout) add(channel string, h Handler) (func(), error) {
	s := newSub(channel, h)
	f.mu.Lock()
	f.subs[channel] = append(f.subs[channel], s)
	f.mu.Unlock()
	return func() {
		s.stop()
		f.mu.Lock()
		list := f.subs[channel]
		for i, cur := range list {
			if cur == s {
				f.subs[channel] = append(list[:i], list[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
	}, nil
}

func (f *fanout) publish(channel string, payload []byte) {
	f.mu.Lock()
	list := append([]*sub(nil), f.subs[channel]...)
	f.mu.Unlock()
	for _, s := range list {
		s.deliver(payload)
	}
}

func (f *fanout) stopAll() {
	f.mu.Lock()
	for _, list := range f.subs {
		for _, s := range list {
			s.stop()
		}
	}
	f.subs = make(map[string][]*sub)
	f.mu.Unlock()
}
