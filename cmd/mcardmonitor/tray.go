//go:build !linux

package main

import (
	"fmt"
	"log"

	"github.com/getlantern/systray"
	"github.com/skratchdot/open-golang/open"

	"github.com/saxbophone/wondercard/card"
)

func createSystray() {
	systray.Run(trayStart, trayExit)
}

func trayExit() {
	fmt.Println("mcardmonitor: exiting")
}

func trayStart() {
	systray.SetTitle("mcard")
	systray.SetTooltip("wondercard - virtual memory card monitor")
	mStatus := systray.AddMenuItem("Open status page", "Opens the card bridge status page in the default browser")
	mInsert := systray.AddMenuItem("Insert fresh card", "Inserts a freshly powered-on card into the slot")
	mEject := systray.AddMenuItem("Eject card", "Removes the currently inserted card")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit")

	go func() {
		for {
			select {
			case <-mStatus.ClickedCh:
				if err := open.Start(browserURL); err != nil {
					log.Println(err)
				}
			case <-mInsert.ClickedCh:
				if err := theSlot.Insert(card.New()); err != nil {
					log.Println("mcardmonitor: insert:", err)
				}
			case <-mEject.ClickedCh:
				if err := theSlot.Remove(); err != nil {
					log.Println("mcardmonitor: remove:", err)
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}
