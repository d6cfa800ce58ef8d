package lh2

import "github.com/DotBots/go-lh2/lfsr"

// CountSlots is the number of count slots filled from one raw data
// set: the two sweeps of rotor A followed by the two sweeps of
// rotor B.
const CountSlots = 4

// Counts recovers the clock count of every sweep sample and maps
// each to its slot: polynomials 0 and 1 fill slots 0-1, polynomials
// 2 and 3 fill slots 2-3, in order of arrival. Samples that overflow
// the slot capacity are dropped.
func (r RawData) Counts() ([CountSlots]uint32, error) {
	var counts [CountSlots]uint32
	var rotorA, rotorB int
	for _, loc := range r.Locations {
		var slot int
		switch loc.Polynomial {
		case 0, 1:
			slot = rotorA
			rotorA++
		case 2, 3:
			slot = 2 + rotorB
			rotorB++
		default:
			return counts, lfsr.ErrInvalidPolynomial
		}
		if slot >= CountSlots {
			continue
		}
		count, err := lfsr.RecoverCount(int(loc.Polynomial), loc.Register())
		if err != nil {
			return counts, err
		}
		counts[slot] = count
	}
	return counts, nil
}
