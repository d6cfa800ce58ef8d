// Package lfsr implements the 17-bit linear-feedback shift registers
// driven by LH2 base stations, and the recovery of clock counts from
// register states captured mid-sweep.
package lfsr

import "math/bits"

const (
	// RegisterBits is the width of the base station's shift register.
	RegisterBits = 17

	// RegisterMask selects the register bits of a working buffer.
	RegisterMask = 1<<RegisterBits - 1

	// Seed is the canonical start state of every sequence.
	Seed = 0x00001

	// Period is the cycle length of each (maximal-length) sequence.
	Period = 1<<RegisterBits - 1

	// CheckpointSpacing is the forward-step distance between two
	// consecutive entries of a checkpoint table.
	CheckpointSpacing = 8192

	// shiftMask drops the outgoing bit before the down-shift of a
	// reverse step.
	shiftMask = RegisterMask &^ 1
)

// Polynomials holds the feedback tap masks of the four sequences a
// base station can emit, one per rotor and polynomial pair.
var Polynomials = [4]uint32{
	0x0001d258,
	0x00017e04,
	0x0001ff6b,
	0x00013f67,
}

// Next advances state by one forward clock under the given
// polynomial. It is the exact inverse of the reverse transition used
// by RecoverCount: one Next followed by one reverse step (or the
// other way around) yields the original state.
func Next(poly int, state uint32) uint32 {
	low := state & (RegisterMask >> 1)
	in := parity(low&Polynomials[poly]) ^ state>>(RegisterBits-1)
	return low<<1 | in
}

// Forward clocks state n steps forward under the given polynomial.
func Forward(poly int, state uint32, n uint32) uint32 {
	for ; n > 0; n-- {
		state = Next(poly, state)
	}
	return state
}

func parity(v uint32) uint32 {
	return uint32(bits.OnesCount32(v)) & 1
}
