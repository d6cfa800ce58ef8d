package lfsr

import (
	"errors"
	"fmt"
)

// maxReverseSteps bounds the reverse search. Every state on a
// sequence is at most CheckpointSpacing-1 reverse steps away from the
// seed or a checkpoint, so a search that runs longer holds bits that
// are not on the selected sequence.
const maxReverseSteps = CheckpointSpacing + 16

var (
	// ErrInvalidPolynomial is returned for polynomial indexes
	// outside [0, 3].
	ErrInvalidPolynomial = errors.New("lfsr: invalid polynomial index")

	// ErrNotInSequence is returned when the captured bits cannot be
	// traced back to the seed, meaning they do not lie on the
	// selected polynomial's sequence.
	ErrNotInSequence = errors.New("lfsr: bits not in sequence")
)

// RecoverCount returns the number of forward clocks separating the
// seed from the captured register state under the given polynomial.
// Bits outside the 17 register bits are ignored.
//
// The search runs the register backwards one clock at a time and
// compares against the checkpoint table, so it terminates within one
// checkpoint interval for any reachable state. Checkpoint k sits
// k*CheckpointSpacing-1 forward clocks from the seed (16 intervals
// span the full period plus the seed itself).
func RecoverCount(poly int, bits uint32) (uint32, error) {
	if poly < 0 || poly >= len(Polynomials) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPolynomial, poly)
	}

	tap := Polynomials[poly]
	cp := &Checkpoints[poly]
	buffer := bits & RegisterMask

	var count uint32
	for steps := 0; ; steps++ {
		if buffer == cp[0] {
			return count, nil
		}
		for k := 1; k < len(cp); k++ {
			if buffer == cp[k] {
				return count + uint32(k)*CheckpointSpacing - 1, nil
			}
		}
		if steps == maxReverseSteps {
			return 0, fmt.Errorf("%w: polynomial %d, bits %#07x", ErrNotInSequence, poly, bits&RegisterMask)
		}
		buffer = prev(tap, buffer)
		count++
	}
}

// prev undoes one forward clock: pull out the bit shifted in last,
// shift down, and reconstruct the bit that fell off the top from the
// feedback parity.
func prev(tap, buffer uint32) uint32 {
	out := buffer & 1
	buffer = (buffer & shiftMask) >> 1
	return buffer | (parity(buffer&tap)^out)<<(RegisterBits-1)
}
