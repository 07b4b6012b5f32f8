// Command mcardctl drives a virtual memory card from the command
// line: id, read, write, dump, and load subcommands against a single
// slot holding a fresh card.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/saxbophone/wondercard/card"
	"github.com/saxbophone/wondercard/driver"
	"github.com/saxbophone/wondercard/internal/obslog"
	"github.com/saxbophone/wondercard/protocol"
	"github.com/saxbophone/wondercard/slot"
)

func usage() {
	fmt.Fprintln(os.Stderr, "mcardctl usage:")
	fmt.Fprintln(os.Stderr, "  mcardctl id")
	fmt.Fprintln(os.Stderr, "  mcardctl read <sector> ")
	fmt.Fprintln(os.Stderr, "  mcardctl write <sector> <hex-128-bytes>")
	fmt.Fprintln(os.Stderr, "  mcardctl dump <file>")
	fmt.Fprintln(os.Stderr, "  mcardctl load <file>")
	os.Exit(2)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ts := strings.ReplaceAll(strings.ReplaceAll(time.Now().Format("2006-01-02T15:04:05.000Z"), ":", "-"), ".", "-")
	logPath := filepath.Join(os.TempDir(), fmt.Sprintf("mcardctl-%s.log", ts))
	if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		log.SetOutput(obslog.NewPanicSafeLogger(logFile))
	} else {
		log.Printf("could not open log file '%s' for writing\n", logPath)
	}
	defer func() {
		if p := recover(); p != nil {
			obslog.LogPanic(p)
			panic(p)
		}
	}()

	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	s := slot.New()
	c := card.New()
	if err := s.Insert(c); err != nil {
		log.Fatalf("mcardctl: insert: %v", err)
	}

	var err error
	switch args[0] {
	case "id":
		err = runID(s)
	case "read":
		if len(args) < 2 {
			usage()
		}
		err = runRead(s, args[1])
	case "write":
		if len(args) < 3 {
			usage()
		}
		err = runWrite(s, args[1], args[2])
	case "dump":
		if len(args) < 2 {
			usage()
		}
		err = runDump(s, args[1])
	case "load":
		if len(args) < 2 {
			usage()
		}
		err = runLoad(s, args[1])
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("mcardctl: %v", err)
	}
}

func runID(s *slot.Slot) error {
	cmds := append([]protocol.TriState{protocol.Byte(0x81), protocol.Byte(protocol.CmdGetID)}, make([]protocol.TriState, 8)...)
	for _, cmd := range cmds {
		_, data, err := s.Send(cmd)
		if err != nil {
			return err
		}
		if v, ok := data.Value(); ok {
			fmt.Printf("%02X ", v)
		} else {
			fmt.Printf("ZZ ")
		}
	}
	fmt.Println()
	return nil
}

func runRead(s *slot.Slot, sectorArg string) error {
	var index int
	if _, err := fmt.Sscanf(sectorArg, "%d", &index); err != nil {
		return fmt.Errorf("invalid sector index %q: %w", sectorArg, err)
	}

	out := make([]byte, protocol.SectorSize)
	result := driver.ReadSector(s, index, out)
	if result != driver.Success {
		return fmt.Errorf("read_sector(%d): %s", index, result)
	}
	for i, b := range out {
		fmt.Printf("%02X", b)
		if i%16 == 15 {
			fmt.Println()
		}
	}
	return nil
}

func runWrite(s *slot.Slot, sectorArg, hexData string) error {
	var index int
	if _, err := fmt.Sscanf(sectorArg, "%d", &index); err != nil {
		return fmt.Errorf("invalid sector index %q: %w", sectorArg, err)
	}
	if len(hexData) != protocol.SectorSize*2 {
		return fmt.Errorf("expected %d hex chars, got %d", protocol.SectorSize*2, len(hexData))
	}

	in := make([]byte, protocol.SectorSize)
	for i := range in {
		if _, err := fmt.Sscanf(hexData[i*2:i*2+2], "%02X", &in[i]); err != nil {
			return fmt.Errorf("invalid hex byte at position %d: %w", i, err)
		}
	}

	result := driver.WriteSector(s, index, in)
	if result != driver.Success {
		return fmt.Errorf("write_sector(%d): %s", index, result)
	}
	return nil
}

func runDump(s *slot.Slot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, protocol.CardSize)
	if result := driver.ReadCard(s, buf); result != driver.Success {
		return fmt.Errorf("read_card: %s", result)
	}
	_, err = f.Write(buf)
	return err
}

func runLoad(s *slot.Slot, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, protocol.CardSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if result := driver.WriteCard(s, buf); result != driver.Success {
		return fmt.Errorf("write_card: %s", result)
	}
	return nil
}
