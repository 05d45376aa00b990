// Package hotkey watches the global recording shortcut, Alt+Slash where
// the platform allows it. Keydown and Keyup feed the Hybrid controller.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}
