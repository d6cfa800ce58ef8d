// Package fcs16 implements the 16-bit frame check sequence used by
// HDLC (X.25, RFC 1662 appendix C), protecting the serial frames
// exchanged with the gateway board.
package fcs16

// Polynomial is the reflected FCS-16 generator x^16+x^12+x^5+1.
const Polynomial = 0x8408

const (
	// Init is the FCS value a frame check starts from.
	Init uint16 = 0xffff
	// Good is the residue left by running Update over a payload
	// followed by its complemented FCS.
	Good uint16 = 0xf0b8
)

// Table is a 256-word table representing the polynomial for efficient processing.
type Table [256]uint16

var fcsTable = makeTable(Polynomial)

// makeTable returns the Table constructed from the specified polynomial.
func makeTable(poly uint16) *Table {
	t := new(Table)
	for i := 0; i < 256; i++ {
		fcs := uint16(i)
		for j := 0; j < 8; j++ {
			if fcs&1 == 1 {
				fcs = (fcs >> 1) ^ poly
			} else {
				fcs >>= 1
			}
		}
		t[i] = fcs
	}
	return t
}

// Update returns the result of adding the bytes in p to the fcs.
func Update(fcs uint16, p []byte) uint16 {
	for _, v := range p {
		fcs = fcsTable[byte(fcs)^v] ^ (fcs >> 8)
	}
	return fcs
}

// Checksum returns the complemented FCS of data, the value a sender
// appends to the frame in little-endian order.
func Checksum(data []byte) uint16 {
	return ^Update(Init, data)
}
