// Command mcardbench times a batch of sector read/write exchanges
// against a virtual card and prints a latency histogram, in the style
// of a microbenchmark report rather than a Go testing.B benchmark.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/saxbophone/wondercard/card"
	"github.com/saxbophone/wondercard/driver"
	"github.com/saxbophone/wondercard/protocol"
	"github.com/saxbophone/wondercard/slot"
)

func main() {
	iterations := flag.Int("n", 2000, "number of read/write round-trips to time")
	bins := flag.Int("bins", 12, "number of histogram bins")
	flag.Parse()

	s := slot.New()
	c := card.New()
	if err := s.Insert(c); err != nil {
		fmt.Fprintf(os.Stderr, "mcardbench: insert: %v\n", err)
		os.Exit(1)
	}

	data := make([]byte, protocol.SectorSize)
	for i := range data {
		data[i] = byte(i)
	}
	out := make([]byte, protocol.SectorSize)

	latencies := make([]float64, 0, *iterations)
	for i := 0; i < *iterations; i++ {
		index := i % protocol.SectorCount

		start := time.Now()
		if result := driver.WriteSector(s, index, data); result != driver.Success {
			fmt.Fprintf(os.Stderr, "mcardbench: write_sector(%d): %s\n", index, result)
			os.Exit(1)
		}
		if result := driver.ReadSector(s, index, out); result != driver.Success {
			fmt.Fprintf(os.Stderr, "mcardbench: read_sector(%d): %s\n", index, result)
			os.Exit(1)
		}
		elapsed := time.Since(start)

		latencies = append(latencies, float64(elapsed.Nanoseconds()))
	}

	hist := histogram.Hist(*bins, latencies)
	if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(80)); err != nil {
		fmt.Fprintf(os.Stderr, "mcardbench: histogram: %v\n", err)
		os.Exit(1)
	}
}
