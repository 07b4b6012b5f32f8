// Command mcardmonitor runs a small tray application that hosts a
// memory card — virtual by default, or a real one over a serial
// bridge when configured — behind a cardbridge WebSocket/HTTP server,
// with menu items to open its status page or insert/eject the card.
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/saxbophone/wondercard/card"
	"github.com/saxbophone/wondercard/cardbridge"
	"github.com/saxbophone/wondercard/hwcard"
	"github.com/saxbophone/wondercard/internal/config"
	"github.com/saxbophone/wondercard/internal/obslog"
	"github.com/saxbophone/wondercard/slot"
)

var (
	listenHost string
	listenPort int
	browserURL string
	theSlot    *slot.Slot
	hwBridge   *hwcard.Bridge
)

func orElse(a, b string) string {
	if a == "" {
		return b
	}
	return a
}

// init runs before main, so log is set up here before anything in
// main can log.
func init() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.LUTC)

	ts := time.Now().Format("2006-01-02T15:04:05.000Z")
	ts = strings.ReplaceAll(ts, ":", "-")
	ts = strings.ReplaceAll(ts, ".", "-")
	logPath := filepath.Join(os.TempDir(), fmt.Sprintf("mcardmonitor-%s.log", ts))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		log.Printf("logging to '%s'\n", logPath)
		log.SetOutput(obslog.NewPanicSafeLogger(logFile))
	} else {
		log.Printf("could not open log file '%s' for writing\n", logPath)
	}
}

func main() {
	defer func() {
		if p := recover(); p != nil {
			obslog.LogPanic(p)
			panic(p)
		}
	}()

	var cfg *config.Config
	if path := os.Getenv("MCARD_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("mcardmonitor: %v", err)
		}
		if err := config.Validate(loaded); err != nil {
			log.Fatalf("mcardmonitor: %v", err)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}

	listenHost = orElse(cfg.Listen.Host, orElse(os.Getenv("MCARD_LISTEN_HOST"), "127.0.0.1"))
	listenPort = cfg.Listen.Port
	if listenPort == 0 {
		var err error
		listenPort, err = strconv.Atoi(orElse(os.Getenv("MCARD_LISTEN_PORT"), "27638"))
		if err != nil || listenPort <= 0 {
			listenPort = 27638
		}
	}
	listenAddr := net.JoinHostPort(listenHost, strconv.Itoa(listenPort))
	browserURL = fmt.Sprintf("http://%s/", listenAddr)

	theSlot = slot.New()

	if cfg.Hardware.Enabled {
		bridge, err := hwcard.Open(cfg.Hardware.Port, cfg.Hardware.BaudRate)
		if err != nil {
			log.Fatalf("mcardmonitor: opening hardware bridge: %v", err)
		}
		hwBridge = bridge
		if err := theSlot.Insert(hwBridge); err != nil {
			log.Printf("mcardmonitor: initial insert of hardware bridge failed: %v", err)
		}
	} else if err := theSlot.Insert(card.New()); err != nil {
		log.Printf("mcardmonitor: initial insert failed: %v", err)
	}

	bridge := cardbridge.New(theSlot)
	go func() {
		log.Fatal(bridge.ListenAndServe(listenAddr))
	}()

	createSystray()
}
