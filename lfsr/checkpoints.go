package lfsr

// Checkpoints holds, for each polynomial, the register states reached
// after k*CheckpointSpacing forward clocks from the seed, k = 0..15.
// Entry 0 is the seed itself. The states are precomputed offline and
// embedded as data; RecoverCount uses them to cut the reverse search
// short.
var Checkpoints = [4][16]uint32{
	{
		0b00000000000000001,
		0b10101010110011101,
		0b10001010101011010,
		0b11001100100000010,
		0b01100101100011111,
		0b10010001101011110,
		0b10100011001011111,
		0b11110001010110001,
		0b10111000110011011,
		0b10100110100011110,
		0b11001101100010000,
		0b01000101110011111,
		0b11100101011110101,
		0b01001001110110111,
		0b11011100110011101,
		0b10000110101101011,
	},
	{
		0b00000000000000001,
		0b11010000110111110,
		0b10110111100111100,
		0b11000010101101111,
		0b00101110001101110,
		0b01000011000110100,
		0b00010001010011110,
		0b10100101111010001,
		0b10011000000100001,
		0b01110011011010110,
		0b00100011101000011,
		0b10111011010000101,
		0b00110010100110110,
		0b01000111111100110,
		0b10001101000111011,
		0b00111100110011100,
	},
	{
		0b00000000000000001,
		0b00011011011000100,
		0b01011101010010110,
		0b11001011001101010,
		0b01110001111011010,
		0b10110110011111010,
		0b10110001110000001,
		0b10001001011101001,
		0b00000010011101011,
		0b01100010101111011,
		0b00111000001101111,
		0b10101011100111000,
		0b01111110101111111,
		0b01000011110101010,
		0b01001011100000011,
		0b00010110111101110,
	},
	{
		0b00000000000000001,
		0b11011011110010110,
		0b11000100000001101,
		0b11100011000010110,
		0b00011111010001100,
		0b11000001011110011,
		0b10011101110001010,
		0b00001011001111000,
		0b00111100010000101,
		0b01001111001010100,
		0b01011010010110011,
		0b11111101010001100,
		0b00110101011011111,
		0b01110110010101011,
		0b00010000110100010,
		0b00010111110101110,
	},
}
