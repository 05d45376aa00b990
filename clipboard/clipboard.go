// Package clipboard wraps the system clipboard behind the one-method
// port the engine writes transcripts to.
package clipboard

import (
	"fmt"

	cb "github.com/atotto/clipboard"
)

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

// System satisfies the engine's Clipboard port.
type System struct{}

func (System) Write(text string) error {
	return Copy(text)
}
