// Package hdlc implements the HDLC-like framing used on the serial
// link between the gateway board and the host: flag-delimited frames,
// byte stuffing and a trailing X.25 frame check sequence.
package hdlc

import (
	"errors"

	"github.com/DotBots/go-lh2/crc/fcs16"
)

const (
	// Flag delimits the start and end of a frame.
	Flag byte = 0x7e
	// Escape precedes a stuffed flag or escape byte in the payload.
	Escape byte = 0x7d

	flagEscaped   byte = 0x5e
	escapeEscaped byte = 0x5d
)

var (
	// ErrInvalidPayload is returned for frames too short to carry an FCS.
	ErrInvalidPayload = errors.New("hdlc: invalid payload")
	// ErrInvalidFCS is returned when the frame check sequence does not match.
	ErrInvalidFCS = errors.New("hdlc: invalid FCS")
	// ErrIncompleteFrame is returned when no complete frame has been received.
	ErrIncompleteFrame = errors.New("hdlc: incomplete frame")
)

// Encode wraps payload in a flag-delimited frame with byte stuffing
// and a little-endian FCS trailer.
func Encode(payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+6)
	frame = append(frame, Flag)
	for _, b := range payload {
		frame = appendStuffed(frame, b)
	}
	fcs := fcs16.Checksum(payload)
	frame = appendStuffed(frame, byte(fcs))
	frame = appendStuffed(frame, byte(fcs>>8))
	return append(frame, Flag)
}

func appendStuffed(frame []byte, b byte) []byte {
	switch b {
	case Escape:
		return append(frame, Escape, escapeEscaped)
	case Flag:
		return append(frame, Escape, flagEscaped)
	}
	return append(frame, b)
}

// Decode unwraps a complete flag-delimited frame and returns its
// payload with the FCS verified and stripped.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < 2 {
		return nil, ErrInvalidPayload
	}

	payload := make([]byte, 0, len(frame)-2)
	escape := false
	for _, b := range frame[1 : len(frame)-1] {
		switch {
		case b == Escape:
			escape = true
		case escape:
			switch b {
			case escapeEscaped:
				payload = append(payload, Escape)
			case flagEscaped:
				payload = append(payload, Flag)
			}
			escape = false
		default:
			payload = append(payload, b)
		}
	}
	return checkFCS(payload)
}

func checkFCS(payload []byte) ([]byte, error) {
	if len(payload) < 2 {
		return nil, ErrInvalidPayload
	}
	if fcs16.Update(fcs16.Init, payload) != fcs16.Good {
		return nil, ErrInvalidFCS
	}
	return payload[:len(payload)-2], nil
}
