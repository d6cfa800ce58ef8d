// Package lh2 decodes Lighthouse v2 optical positioning data: raw
// sweep captures from a photodiode receiver into LFSR clock counts
// and camera-plane points.
package lh2

import (
	"encoding/binary"
	"fmt"

	"github.com/DotBots/go-lh2/lfsr"
)

// RawLocationSize is the wire size of a single sweep sample.
const RawLocationSize = 10

// captureBits is the width of the demodulated capture window. The
// 17-bit register window starts Offset bits into it, leaving
// captureBits-17 = 47 trailing bits below the window at offset 0.
const captureBits = 64

// RawLocation is one captured sweep sample: a 64-bit capture of the
// demodulated bit stream, the polynomial index the demodulator
// attributed to it, and the bit offset of the register window within
// the capture.
type RawLocation struct {
	Bits       uint64
	Polynomial uint8
	Offset     int8
}

// ParseRawLocation decodes the 10-byte wire form: 64 bits of capture
// (little-endian), polynomial index, signed window offset.
func ParseRawLocation(data []byte) (RawLocation, error) {
	if len(data) < RawLocationSize {
		return RawLocation{}, fmt.Errorf("lh2: raw location too short: %d bytes", len(data))
	}
	return RawLocation{
		Bits:       binary.LittleEndian.Uint64(data[0:8]),
		Polynomial: data[8],
		Offset:     int8(data[9]),
	}, nil
}

// Bytes returns the 10-byte wire form.
func (l RawLocation) Bytes() []byte {
	var b [RawLocationSize]byte
	binary.LittleEndian.PutUint64(b[0:8], l.Bits)
	b[8] = l.Polynomial
	b[9] = byte(l.Offset)
	return b[:]
}

// Register extracts the 17-bit register state whose window starts
// Offset bits into the capture. Offsets that push the window outside
// the capture yield 0 (not a valid state on any sequence).
func (l RawLocation) Register() uint32 {
	shift := captureBits - lfsr.RegisterBits - int(l.Offset)
	if shift < 0 || shift >= captureBits {
		return 0
	}
	return uint32(l.Bits>>uint(shift)) & lfsr.RegisterMask
}

// RawData is the set of sweep samples delivered for one measurement,
// at most two per rotor.
type RawData struct {
	Locations []RawLocation
}
