package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"musevoice/session"
	"musevoice/waveform"
)

// headlessDisplay prints one line per event so a driving process or an
// integration test can script a full session over stdin and stdout.
type headlessDisplay struct {
	done chan struct{}
}

func newHeadlessDisplay() *headlessDisplay {
	return &headlessDisplay{done: make(chan struct{}, 1)}
}

func (h *headlessDisplay) signalDone() {
	select {
	case h.done <- struct{}{}:
	default:
	}
}

func (h *headlessDisplay) Status(st session.Status) {
	fmt.Printf("STATUS %s\n", st)
}

func (h *headlessDisplay) SampleCount(n int) {}

func (h *headlessDisplay) Waveform(f waveform.Frame) {}

func (h *headlessDisplay) Transcript(text string, copied bool) {
	fmt.Printf("TRANSCRIPT %s\n", text)
	h.signalDone()
}

func (h *headlessDisplay) Error(message string) {
	fmt.Printf("ERROR %s\n", message)
	h.signalDone()
}

func (h *headlessDisplay) RetryAvailable(ok bool) {
	fmt.Printf("RETRY %v\n", ok)
}

// driveHeadless reads commands from stdin until QUIT or EOF. WAIT blocks
// until the next transcript or error arrives.
func driveHeadless(machine *session.Machine, hd *headlessDisplay) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "START":
			machine.RequestStart(context.Background())
		case "STOP":
			machine.RequestStop(context.Background())
		case "CANCEL":
			machine.RequestCancel(context.Background())
		case "RETRY":
			machine.RequestRetry(context.Background())
		case "WAIT":
			<-hd.done
		case "QUIT":
			return
		default:
			if strings.HasPrefix(cmd, "SLEEP ") {
				if ms, err := strconv.Atoi(cmd[6:]); err == nil {
					time.Sleep(time.Duration(ms) * time.Millisecond)
				}
			}
		}
	}
}
