//go:build !darwin

// Package login installs the binary as a launch-at-login agent. Only
// macOS is supported; other platforms report that plainly.
package login

import "errors"

var errUnsupported = errors.New("launch at login is only supported on macOS")

func Enabled() bool { return false }

func Enable() error { return errUnsupported }

func Disable() error { return errUnsupported }
