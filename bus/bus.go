// Package bus carries the client/engine contract: named push channels
// inbound and fire-and-forget commands outbound. Payloads stay raw JSON
// here; typed decoding happens at the bridge boundary.
package bus

import "context"

// Event channels pushed by the engine. Delivery is at-least-once with no
// ordering guarantee across channels.
const (
	EvSessionState   = "session-state-changed"
	EvSampleCount    = "sample-count"
	EvWaveformChunk  = "waveform-chunk"
	EvTranscription  = "transcription-result"
	EvSessionError   = "session-error"
	EvRetryAvailable = "retry-available"
	EvAudioCue       = "audio-cue"
)

// Commands issued to the engine. Completion is observed via events, never
// via return values.
const (
	CmdStartRecording    = "start-recording"
	CmdStopRecording     = "stop-recording"
	CmdCancelProcessing  = "cancel-processing"
	CmdRetryLast         = "retry-last"
	CmdCopyText          = "copy-text"
	CmdSetModel          = "set-model"
	CmdSetRewriteEnabled = "set-rewrite-enabled"
)

// Handler receives one event payload. Handlers for different channels are
// dispatched independently; a slow handler only delays its own channel.
type Handler func(payload []byte)

// Bus is one engine connection.
type Bus interface {
	// Subscribe registers a handler for a channel and returns its
	// unsubscribe function. Setup may fail (transport down).
	Subscribe(channel string, h Handler) (func(), error)
	// Send delivers a command. A nil error means delivered, not done.
	Send(ctx context.Context, command string, payload []byte) error
	Close() error
}
