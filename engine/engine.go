// Package engine is the in-process recording backend used in demo mode
// and tests. It speaks the full command and event contract over a memory
// bus: capture feeds sample counts and waveform chunks, stop hands the
// recording to a transcriber, and every outcome lands as events.
package engine

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"musevoice/audio"
	"musevoice/bus"
	"musevoice/log"
	"musevoice/session"
	"musevoice/textmerge"
)

// Models the engine accepts for set-model.
var knownModels = map[string]bool{
	"whisper-1":         true,
	"gpt-4o-transcribe": true,
}

const DefaultModel = "whisper-1"

// Clipboard is where copy-text lands.
type Clipboard interface {
	Write(text string) error
}

type Config struct {
	Model   string
	Rewrite bool
	// Gain is passed through to capture. Zero means unity.
	Gain int32
	// Dump, when set, is a directory that receives a FLAC copy of every
	// finished recording.
	Dump string
}

type Engine struct {
	bus   *bus.MemoryBus
	audio audio.Context
	dev   *audio.DeviceInfo
	tr    Transcriber
	clip  Clipboard

	mu         sync.Mutex
	state      session.State
	model      string
	rewrite    bool
	capture    audio.CaptureDevice
	samples    []int16
	retained   []int16
	total      int
	chunks     chunker
	procCancel context.CancelFunc
	gain       int32
	dump       string
}

// New wires the engine to the client half of a memory bus. dev selects a
// capture device, nil for the platform default.
func New(b *bus.MemoryBus, actx audio.Context, dev *audio.DeviceInfo, tr Transcriber, clip Clipboard, cfg Config) *Engine {
	model := cfg.Model
	if !knownModels[model] {
		model = DefaultModel
	}
	e := &Engine{
		bus:     b,
		audio:   actx,
		dev:     dev,
		tr:      tr,
		clip:    clip,
		state:   session.StateIdle,
		model:   model,
		rewrite: cfg.Rewrite,
		gain:    cfg.Gain,
		dump:    cfg.Dump,
	}
	b.Handle(bus.CmdStartRecording, e.onStart)
	b.Handle(bus.CmdStopRecording, e.onStop)
	b.Handle(bus.CmdCancelProcessing, e.onCancel)
	b.Handle(bus.CmdRetryLast, e.onRetry)
	b.Handle(bus.CmdCopyText, e.onCopyText)
	b.Handle(bus.CmdSetModel, e.onSetModel)
	b.Handle(bus.CmdSetRewriteEnabled, e.onSetRewrite)
	e.publish(bus.EvSessionState, string(session.StateIdle))
	return e
}

func (e *Engine) publish(channel string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Errorf("engine: marshal %s: %v", channel, err)
		return
	}
	e.bus.Publish(channel, payload)
}

// setState must be called with e.mu held.
func (e *Engine) setState(st session.State) {
	e.state = st
	e.publish(bus.EvSessionState, string(st))
}

func (e *Engine) errorOut(msg string, retryable bool) {
	e.setState(session.StateError)
	e.publish(bus.EvSessionError, map[string]string{"message": msg})
	e.publish(bus.EvRetryAvailable, retryable)
	e.publish(bus.EvAudioCue, "error")
}

func (e *Engine) onStart([]byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case session.StateIdle, session.StateCompleted, session.StateError, session.StateCancelled:
	default:
		log.Warnf("engine: start ignored in state %s", e.state)
		return
	}

	if e.capture == nil {
		capture, err := e.audio.NewCapture(e.dev, audio.CaptureConfig{
			SampleRate: audio.SampleRate,
			Channels:   1,
			Gain:       e.gain,
		})
		if err != nil {
			e.errorOut(fmt.Sprintf("open capture device: %v", err), false)
			return
		}
		e.capture = capture
	}

	e.samples = e.samples[:0]
	e.retained = nil
	e.total = 0
	e.chunks.reset()
	e.capture.SetCallback(e.onData)
	if err := e.capture.Start(); err != nil {
		e.capture.ClearCallback()
		e.errorOut(fmt.Sprintf("start capture: %v", err), false)
		return
	}

	e.setState(session.StateRecording)
	e.publish(bus.EvAudioCue, "record-start")
}

// onData runs on the capture thread; it must not block.
func (e *Engine) onData(data []byte, _ uint32) {
	n := len(data) / 2
	if n == 0 {
		return
	}
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	e.mu.Lock()
	if e.state != session.StateRecording {
		e.mu.Unlock()
		return
	}
	e.samples = append(e.samples, samples...)
	e.total += n
	total := e.total
	out := e.chunks.feed(samples)
	e.mu.Unlock()

	e.publish(bus.EvSampleCount, total)
	for _, c := range out {
		e.publish(bus.EvWaveformChunk, map[string]any{
			"bins":    c.bins,
			"avg_rms": c.avgRMS,
		})
	}
}

func (e *Engine) onStop([]byte) {
	e.mu.Lock()
	if e.state != session.StateRecording {
		e.mu.Unlock()
		log.Warnf("engine: stop ignored in state %s", e.state)
		return
	}
	e.capture.Stop()
	e.capture.ClearCallback()
	e.publish(bus.EvAudioCue, "record-stop")
	e.setState(session.StateProcessing)

	recording := append([]int16(nil), e.samples...)
	e.retained = recording
	ctx, cancel := context.WithCancel(context.Background())
	e.procCancel = cancel
	dump := e.dump
	e.mu.Unlock()

	if dump != "" {
		go dumpRecording(dump, recording)
	}
	go e.process(ctx, recording)
}

func (e *Engine) process(ctx context.Context, recording []int16) {
	e.mu.Lock()
	model, rewrite := e.model, e.rewrite
	e.mu.Unlock()

	text, err := e.tr.Transcribe(ctx, recording, model)

	e.mu.Lock()
	defer e.mu.Unlock()
	if ctx.Err() != nil || e.state != session.StateProcessing {
		// Cancelled mid-flight; the cancel handler already spoke.
		return
	}
	if err != nil {
		e.setState(session.StateError)
		e.publish(bus.EvSessionError, map[string]string{"message": err.Error()})
		// An empty recording retains nothing, so there is nothing to
		// offer retry-last against.
		e.publish(bus.EvRetryAvailable, e.retained != nil)
		e.publish(bus.EvAudioCue, "error")
		return
	}
	if rewrite {
		text = textmerge.ChatTrim(text)
	}
	e.retained = nil
	e.setState(session.StateCompleted)
	e.publish(bus.EvTranscription, text)
	e.publish(bus.EvRetryAvailable, false)
	e.publish(bus.EvAudioCue, "done")
}

func (e *Engine) onCancel([]byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != session.StateProcessing {
		log.Warnf("engine: cancel ignored in state %s", e.state)
		return
	}
	if e.procCancel != nil {
		e.procCancel()
		e.procCancel = nil
	}
	e.retained = nil
	e.setState(session.StateCancelled)
}

func (e *Engine) onRetry([]byte) {
	e.mu.Lock()
	if e.state != session.StateError || e.retained == nil {
		e.mu.Unlock()
		log.Warnf("engine: retry ignored in state %s", e.state)
		return
	}
	e.setState(session.StateProcessing)
	recording := e.retained
	ctx, cancel := context.WithCancel(context.Background())
	e.procCancel = cancel
	e.mu.Unlock()

	go e.process(ctx, recording)
}

func (e *Engine) onCopyText(payload []byte) {
	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		log.Warnf("engine: bad copy-text payload: %v", err)
		return
	}
	if err := e.clip.Write(text); err != nil {
		// Clipboard trouble never disturbs the session state.
		e.publish(bus.EvSessionError, map[string]string{
			"message": fmt.Sprintf("clipboard: %v", err),
		})
	}
}

func (e *Engine) onSetModel(payload []byte) {
	var name string
	if err := json.Unmarshal(payload, &name); err != nil {
		log.Warnf("engine: bad set-model payload: %v", err)
		return
	}
	if !knownModels[name] {
		e.publish(bus.EvSessionError, map[string]string{
			"message": fmt.Sprintf("unsupported model %q", name),
		})
		return
	}
	e.mu.Lock()
	e.model = name
	e.mu.Unlock()
	log.Infof("engine: model set to %s", name)
}

func (e *Engine) onSetRewrite(payload []byte) {
	var on bool
	if err := json.Unmarshal(payload, &on); err != nil {
		log.Warnf("engine: bad set-rewrite payload: %v", err)
		return
	}
	e.mu.Lock()
	e.rewrite = on
	e.mu.Unlock()
}

// Model reports the active transcription model.
func (e *Engine) Model() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

func (e *Engine) Close() {
	e.mu.Lock()
	if e.procCancel != nil {
		e.procCancel()
		e.procCancel = nil
	}
	capture := e.capture
	e.capture = nil
	e.mu.Unlock()
	if capture != nil {
		capture.Stop()
		capture.Close()
	}
	e.audio.Close()
}
