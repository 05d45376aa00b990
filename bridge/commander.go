package bridge

import (
	"context"
	"encoding/json"

	"musevoice/bus"
)

// Commander sends session commands over the bus, satisfying the session
// machine's outbound interface.
type Commander struct {
	bus bus.Bus
}

func NewCommander(b bus.Bus) *Commander {
	return &Commander{bus: b}
}

func (c *Commander) StartRecording(ctx context.Context) error {
	return c.bus.Send(ctx, bus.CmdStartRecording, nil)
}

func (c *Commander) StopRecording(ctx context.Context) error {
	return c.bus.Send(ctx, bus.CmdStopRecording, nil)
}

func (c *Commander) CancelProcessing(ctx context.Context) error {
	return c.bus.Send(ctx, bus.CmdCancelProcessing, nil)
}

func (c *Commander) RetryLast(ctx context.Context) error {
	return c.bus.Send(ctx, bus.CmdRetryLast, nil)
}

func (c *Commander) CopyText(ctx context.Context, text string) error {
	payload, err := json.Marshal(text)
	if err != nil {
		return err
	}
	return c.bus.Send(ctx, bus.CmdCopyText, payload)
}

func (c *Commander) SetModel(ctx context.Context, name string) error {
	payload, err := json.Marshal(name)
	if err != nil {
		return err
	}
	return c.bus.Send(ctx, bus.CmdSetModel, payload)
}

func (c *Commander) SetRewriteEnabled(ctx context.Context, on bool) error {
	payload, err := json.Marshal(on)
	if err != nil {
		return err
	}
	return c.bus.Send(ctx, bus.CmdSetRewriteEnabled, payload)
}
