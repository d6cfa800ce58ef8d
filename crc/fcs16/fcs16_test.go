package fcs16

import "testing"

func TestTable(t *testing.T) {
	// Spot values from the X.25 FCS lookup table.
	var tests = []struct {
		index byte
		want  uint16
	}{
		{0x00, 0x0000},
		{0x01, 0x1189},
		{0x02, 0x2312},
		{0x80, 0x8408},
		{0xff, 0x0f78},
	}

	for _, test := range tests {
		if got := fcsTable[test.index]; got != test.want {
			t.Fatalf("table[%#02x] = %#04x, want %#04x", test.index, got, test.want)
		}
	}
}

func TestChecksum(t *testing.T) {
	var tests = []struct {
		data []byte
		want uint16
	}{
		{[]byte{}, 0x0000},
		{[]byte("test"), 0x0788},
		{[]byte{0x00, 0x00, 0xf6, 0xf6, 0xf6, 0xf6}, 0x2bb2},
		{[]byte{0xe7, 0x94, 0x3a, 0xa6}, 0x7e83},
	}

	for _, test := range tests {
		if got := Checksum(test.data); got != test.want {
			t.Fatalf("Checksum(%x) = %#04x, want %#04x", test.data, got, test.want)
		}
	}
}

func TestGoodResidue(t *testing.T) {
	for _, data := range [][]byte{{}, []byte("test"), {0x7e, 0x7d, 0x00, 0xff}} {
		fcs := Checksum(data)
		frame := append(append([]byte{}, data...), byte(fcs), byte(fcs>>8))
		if got := Update(Init, frame); got != Good {
			t.Fatalf("residue over %x = %#04x, want %#04x", frame, got, Good)
		}
	}
}
