package main

import (
	"fmt"
	"os"

	"musevoice/login"
	"musevoice/update"
)

func runUpdate() {
	if version == "dev" {
		fmt.Println("Dev build, cannot check for updates.")
		os.Exit(0)
	}
	fmt.Printf("musevoice %s, checking for updates...\n", version)
	rel, err := update.CheckLatest(version)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if rel == nil {
		fmt.Println("Already up to date.")
		os.Exit(0)
	}
	fmt.Printf("Update available: %s -> %s\n", version, rel.Version)
	fmt.Print("Continue? [y/N] ")
	var answer string
	fmt.Scanln(&answer)
	if answer != "y" && answer != "Y" {
		fmt.Println("Aborted.")
		os.Exit(0)
	}
	fmt.Printf("Downloading %s...\n", rel.Version)
	if err := update.Apply(rel); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated to %s\n", rel.Version)
	os.Exit(0)
}

func runLogin(args []string) {
	action := "status"
	if len(args) > 0 {
		action = args[0]
	}
	switch action {
	case "enable":
		if err := login.Enable(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("musevoice will start at login.")
	case "disable":
		if err := login.Disable(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("musevoice will no longer start at login.")
	case "status":
		if login.Enabled() {
			fmt.Println("Start at login: enabled")
		} else {
			fmt.Println("Start at login: disabled")
		}
	default:
		fmt.Fprintln(os.Stderr, "Usage: musevoice login [enable|disable|status]")
		os.Exit(1)
	}
	os.Exit(0)
}
