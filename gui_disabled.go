//go:build !gui

package main

func initGUI() {
	panic("musevoice: built without GUI support (rebuild with -tags gui)")
}
