// Package doctor runs interactive diagnostics for the pieces that break
// on real machines: input devices, audio output, the clipboard, and the
// log directory.
package doctor

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"musevoice/audio"
	"musevoice/clipboard"
	"musevoice/cue"
	"musevoice/hotkey"
	"musevoice/log"
)

// Run executes all checks and returns an exit code, 0 when every check
// passed.
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("musevoice doctor - interactive system diagnostics")
	fmt.Println("=================================================")

	allPass := true
	if !checkLogDir() {
		allPass = false
	}
	if !checkClipboard() {
		allPass = false
	}
	if !checkCueOutput() {
		allPass = false
	}
	if allPass && !checkHotkey() {
		allPass = false
	}
	if allPass && !checkMicrophone() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkLogDir() bool {
	fmt.Println()
	fmt.Println("[1/5] Log directory")

	dir := log.Dir()
	if err := log.EnsureDir(); err != nil {
		fmt.Printf("  FAIL: cannot create %s: %v\n", dir, err)
		return false
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		fmt.Printf("  FAIL: %s not writable: %v\n", dir, err)
		return false
	}
	os.Remove(probe)
	fmt.Printf("  PASS: %s is writable\n", dir)
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[2/5] Clipboard round-trip")

	testStr := fmt.Sprintf("musevoice-doctor-%d", time.Now().UnixNano())

	type cbResult struct {
		readback string
		err      error
		phase    string
	}
	ch := make(chan cbResult, 1)
	go func() {
		if err := clipboard.Copy(testStr); err != nil {
			ch <- cbResult{err: err, phase: "write"}
			return
		}
		got, err := clipboard.Read()
		if err != nil {
			ch <- cbResult{err: err, phase: "read"}
			return
		}
		ch <- cbResult{readback: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			fmt.Printf("  FAIL: clipboard %s failed: %v\n", res.phase, res.err)
			return false
		}
		if res.readback != testStr {
			fmt.Printf("  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, res.readback)
			return false
		}
		fmt.Println("  PASS: clipboard write/read verified")
		return true
	case <-time.After(3 * time.Second):
		fmt.Println("  FAIL: clipboard timed out (compositor not accessible?)")
		return false
	}
}

func checkCueOutput() bool {
	fmt.Println()
	fmt.Println("[3/5] Audio cue playback")

	out, err := cue.NewOutput()
	if err != nil {
		fmt.Printf("  FAIL: cannot open playback: %v\n", err)
		return false
	}
	defer out.Close()

	sample, err := cue.Synthesize(cue.Done)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	if err := out.Play(sample); err != nil {
		fmt.Printf("  FAIL: playback failed: %v\n", err)
		return false
	}
	time.Sleep(500 * time.Millisecond)

	resetTerminal()
	if !confirm("Did you hear a two-note chime?") {
		fmt.Println("  FAIL: cue not confirmed")
		return false
	}
	fmt.Println("  PASS: cue playback verified by user")
	return true
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[4/5] Hotkey detection")
	fmt.Println("Press the recording shortcut (Alt+Slash on Linux)...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		// The listener can leave the terminal in raw mode.
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkMicrophone() bool {
	fmt.Println()
	fmt.Println("[5/5] Microphone capture")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	device, err := audio.SelectDevice(ctx)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("Using device: %s\n", device.Name)
	if audio.IsBluetooth(device.Name) {
		fmt.Println("  Note: bluetooth input often captures at reduced quality")
	}

	capture, err := ctx.NewCapture(device, audio.CaptureConfig{
		SampleRate: audio.SampleRate,
		Channels:   1,
	})
	if err != nil {
		fmt.Printf("  FAIL: open capture: %v\n", err)
		return false
	}
	defer capture.Close()

	var mu sync.Mutex
	var sumSquares float64
	var count int
	capture.SetCallback(func(data []byte, _ uint32) {
		mu.Lock()
		for i := 0; i+1 < len(data); i += 2 {
			v := float64(int16(uint16(data[i])|uint16(data[i+1])<<8)) / 32768
			sumSquares += v * v
			count++
		}
		mu.Unlock()
	})

	fmt.Print("Speak for 2 seconds")
	if err := capture.Start(); err != nil {
		fmt.Printf("\n  FAIL: start capture: %v\n", err)
		return false
	}
	for i := 0; i < 4; i++ {
		time.Sleep(500 * time.Millisecond)
		fmt.Print(".")
	}
	capture.Stop()
	fmt.Println(" done")

	mu.Lock()
	defer mu.Unlock()
	if count == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}
	rms := math.Sqrt(sumSquares / float64(count))
	fmt.Printf("  Captured %d samples, rms %.4f\n", count, rms)
	if rms < 1e-5 {
		fmt.Println("  FAIL: signal is silent (muted input?)")
		return false
	}
	fmt.Println("  PASS: microphone capture verified")
	return true
}

func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/n]: ", prompt)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
