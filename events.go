package main

import (
	"context"
	"time"

	"musevoice/cue"
	"musevoice/log"
	"musevoice/paste"
	"musevoice/session"
	"musevoice/textmerge"
	"musevoice/waveform"
)

// Display abstracts the render surface so the Bubble Tea TUI and the
// Fyne widget receive the same decoded events.
type Display interface {
	Status(st session.Status)
	SampleCount(n int)
	Waveform(f waveform.Frame)
	Transcript(text string, copied bool)
	Error(message string)
	RetryAvailable(ok bool)
}

// appSink is the bridge sink: it merges transcripts, plays cues, copies
// results out, and forwards everything display-worthy.
type appSink struct {
	display   Display
	player    *cue.Player
	buffer    *textmerge.Buffer
	commander session.Commander
	chatMode  bool
	autoPaste bool
}

func (s *appSink) SessionState(st session.State) {
	log.Infof("session state: %s", st)
}

func (s *appSink) SampleCount(n int) {
	s.display.SampleCount(n)
}

func (s *appSink) Waveform(f waveform.Frame) {
	s.display.Waveform(f)
}

func (s *appSink) Transcription(text string) {
	merged := s.buffer.MergeIn(text, textmerge.ModeInsert, s.chatMode)
	log.TranscriptionText(text)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	copied := true
	if err := s.commander.CopyText(ctx, merged); err != nil {
		log.Errorf("copy-text: %v", err)
		copied = false
	}
	if copied && s.autoPaste {
		if err := paste.Send(); err != nil {
			log.Warnf("auto-paste: %v", err)
		}
	}
	s.display.Transcript(merged, copied)
}

func (s *appSink) SessionError(message string) {
	log.Errorf("session error: %s", message)
	s.display.Error(message)
}

func (s *appSink) RetryAvailable(ok bool) {
	s.display.RetryAvailable(ok)
}

// AudioCue payloads use the cue IDs verbatim.
func (s *appSink) AudioCue(id string) {
	s.player.Play(id)
}
