package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/DotBots/go-lh2/lfsr"
)

func main() {
	poly := flag.Int("poly", 0, "polynomial index (0-3)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [-poly index] bits [bits ...]\n", os.Args[0])
		os.Exit(2)
	}

	for _, arg := range flag.Args() {
		bits, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", arg, err)
			os.Exit(1)
		}
		count, err := lfsr.RecoverCount(*poly, uint32(bits))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", arg, err)
			os.Exit(1)
		}
		fmt.Printf("%#07x = %d\n", bits&lfsr.RegisterMask, count)
	}
}
