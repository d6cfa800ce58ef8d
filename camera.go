package lh2

import "math"

// Sweep periods in clock ticks for rotor A (polynomials 0 and 1) and
// rotor B (polynomials 2 and 3). The rotors spin at slightly
// different rates so their sweeps can be told apart.
const (
	periodRotorA = 959000
	periodRotorB = 957000
)

// CameraPoint projects a pair of sweep counts from one rotor onto the
// base station's camera plane. poly selects the rotor the counts were
// recovered under; count1 and count2 are the counts of the rotor's
// two sweeps.
func CameraPoint(count1, count2 uint32, poly uint8) (x, y float64) {
	period := float64(periodRotorA)
	if poly > 1 {
		period = float64(periodRotorB)
	}

	a1 := float64(count1) * 8 / period * 2 * math.Pi
	a2 := float64(count2) * 8 / period * 2 * math.Pi

	x = -math.Tan(0.5 * (a1 + a2))
	if count1 < count2 {
		y = -math.Sin(a2/2-a1/2-60*math.Pi/180) / math.Tan(math.Pi/6)
	} else {
		y = -math.Sin(a1/2-a2/2-60*math.Pi/180) / math.Tan(math.Pi/6)
	}
	return x, y
}
