package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"musevoice/log"
)

const wsDialTimeout = 5 * time.Second

// frame is the websocket wire format, one JSON object per message.
type frame struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel,omitempty"`
	Name    string          `json:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSBus speaks the contract over a single websocket connection to a
// remote engine. Events arrive as {"type":"event"} frames and commands
// leave as {"type":"command"} frames.
type WSBus struct {
	conn *websocket.Conn
	fan  *fanout

	writeMu sync.Mutex
	once    sync.Once
	done    chan struct{}
}

// DialWS connects to a remote engine at url, e.g. ws://127.0.0.1:7725/bus.
func DialWS(ctx context.Context, url string) (*WSBus, error) {
	dctx, cancel := context.WithTimeout(ctx, wsDialTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	b := &WSBus{
		conn: conn,
		fan:  newFanout(),
		done: make(chan struct{}),
	}
	go b.readLoop()
	return b, nil
}

func (b *WSBus) readLoop() {
	for {
		var f frame
		if err := b.conn.ReadJSON(&f); err != nil {
			select {
			case <-b.done:
			default:
				log.Warnf("bus: websocket read: %v", err)
			}
			b.Close()
			return
		}
		if f.Type != "event" || f.Channel == "" {
			log.Warnf("bus: ignoring frame type=%q channel=%q", f.Type, f.Channel)
			continue
		}
		b.fan.publish(f.Channel, []byte(f.Payload))
	}
}

func (b *WSBus) Subscribe(channel string, h Handler) (func(), error) {
	select {
	case <-b.done:
		return nil, fmt.Errorf("bus closed")
	default:
	}
	return b.fan.add(channel, h)
}

func (b *WSBus) Send(ctx context.Context, command string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-b.done:
		return fmt.Errorf("bus closed")
	default:
	}
	f := frame{Type: "command", Name: command, Payload: payload}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		b.conn.SetWriteDeadline(deadline)
	} else {
		b.conn.SetWriteDeadline(time.Now().Add(wsDialTimeout))
	}
	if err := b.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("send %s: %w", command, err)
	}
	return nil
}

func (b *WSBus) Close() error {
	var err error
	b.once.Do(func() {
		close(b.done)
		b.writeMu.Lock()
		b.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		b.writeMu.Unlock()
		err = b.conn.Close()
		b.fan.stopAll()
	})
	return err
}
