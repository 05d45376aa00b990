package engine

import (
	"os"
	"path/filepath"
	"time"

	"musevoice/encoder"
	"musevoice/log"
)

// dumpRecording writes a finished recording as FLAC, named by wall clock.
// Failures are logged and otherwise ignored so a full disk never blocks a
// transcription.
func dumpRecording(dir string, samples []int16) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warnf("engine: recording dump: %v", err)
		return
	}
	data, err := encoder.Encode(samples)
	if err != nil {
		log.Warnf("engine: recording dump: %v", err)
		return
	}
	path := filepath.Join(dir, time.Now().Format("20060102-150405")+".flac")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warnf("engine: recording dump: %v", err)
		return
	}
	log.Infof("engine: recording saved to %s (%d samples)", path, len(samples))
}
