//go:build linux

package main

import (
	"log"

	"github.com/skratchdot/open-golang/open"
)

// createSystray on Linux just opens the browser UI on startup and
// blocks; getlantern/systray needs a desktop notification stack that
// headless Linux hosts running this tool typically lack.
func createSystray() {
	if err := open.Start(browserURL); err != nil {
		log.Println(err)
	}
	select {}
}
