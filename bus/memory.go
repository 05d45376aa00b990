package bus

import (
	"context"
	"fmt"
	"sync"
)

// CommandFunc handles one command on the engine side of a MemoryBus.
type CommandFunc func(payload []byte)

// MemoryBus is the in-process transport. The client half is the Bus
// interface; the engine half publishes events with Publish and registers
// command handlers with Handle.
type MemoryBus struct {
	fan *fanout

	mu     sync.Mutex
	cmds   map[string]CommandFunc
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		fan:  newFanout(),
		cmds: make(map[string]CommandFunc),
	}
}

func (b *MemoryBus) Subscribe(channel string, h Handler) (func(), error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("bus closed")
	}
	return b.fan.add(channel, h)
}

func (b *MemoryBus) Send(ctx context.Context, command string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	fn, ok := b.cmds[command]
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return fmt.Errorf("bus closed")
	}
	if !ok {
		return fmt.Errorf("no handler for command %q", command)
	}
	go fn(payload)
	return nil
}

// Handle registers the engine-side handler for a command, replacing any
// previous one.
func (b *MemoryBus) Handle(command string, fn CommandFunc) {
	b.mu.Lock()
	b.cmds[command] = fn
	b.mu.Unlock()
}

// Publish pushes an event to every subscriber of the channel.
func (b *MemoryBus) Publish(channel string, payload []byte) {
	b.fan.publish(channel, payload)
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	b.fan.stopAll()
	return nil
}
