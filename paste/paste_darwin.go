//go:build darwin

// Package paste synthesizes the platform paste keystroke so a merged
// transcript lands in whatever field has focus.
package paste

import "github.com/micmonay/keybd_event"

func Send() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasSuper(true) // Cmd+V on macOS
	return kb.Launching()
}
