// lh2sim emits the HDLC-framed raw-data frames a DotBot would send
// for a measurement taken at known sweep counts. Useful for feeding
// lh2gateway without hardware.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	lh2 "github.com/DotBots/go-lh2"
	"github.com/DotBots/go-lh2/hdlc"
	"github.com/DotBots/go-lh2/lfsr"
	"github.com/DotBots/go-lh2/protocol"
)

func location(poly int, count uint32) lh2.RawLocation {
	state := lfsr.Forward(poly, lfsr.Seed, count)
	return lh2.RawLocation{
		Bits:       uint64(state) << 47,
		Polynomial: uint8(poly),
	}
}

func main() {
	var counts [4]uint
	flag.UintVar(&counts[0], "a1", 1000, "rotor A first sweep count")
	flag.UintVar(&counts[1], "a2", 2000, "rotor A second sweep count")
	flag.UintVar(&counts[2], "b1", 1200, "rotor B first sweep count")
	flag.UintVar(&counts[3], "b2", 2300, "rotor B second sweep count")
	source := flag.Uint64("source", 0xb07, "source device address")
	raw := flag.Bool("raw", false, "write raw frames instead of hex")
	flag.Parse()

	for _, count := range counts {
		if count >= lfsr.Period {
			fmt.Fprintf(os.Stderr, "count %d exceeds the sequence period\n", count)
			os.Exit(1)
		}
	}

	header := protocol.Header{
		Destination: protocol.BroadcastAddress,
		Source:      *source,
		Application: protocol.ApplicationDotBot,
		Version:     protocol.Version,
	}

	for _, pair := range [][2]int{{0, 1}, {2, 3}} {
		payload := protocol.LH2RawData{
			Locations: [2]lh2.RawLocation{
				location(pair[0], uint32(counts[pair[0]])),
				location(pair[1], uint32(counts[pair[1]])),
			},
		}
		frame := hdlc.Encode(protocol.Marshal(header, payload))
		if *raw {
			os.Stdout.Write(frame)
		} else {
			fmt.Println(hex.EncodeToString(frame))
		}
	}
}
