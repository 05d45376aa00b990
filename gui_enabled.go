//go:build gui

package main

import (
	"runtime"

	"musevoice/gui"
	"musevoice/waveform"
)

var guiApp *gui.App

func initGUI() {
	guiMode = true

	// Fyne/GLFW must own the main OS thread.
	runtime.LockOSThread()

	guiApp = gui.NewApp(func() {
		run()
	}, gracefulShutdown)
	display = guiApp
	if err := gui.Run(guiApp, waveform.DefaultConfig()); err != nil {
		panic(err)
	}
	gracefulShutdown()
}
