// Package protocol implements the DotBot serial protocol frames that
// carry lighthouse positioning data between the gateway board and
// the host.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	lh2 "github.com/DotBots/go-lh2"
)

// Version is the protocol version this package implements. Frames
// with any other version are rejected.
const Version = 7

// HeaderSize is the wire size of a frame header.
const HeaderSize = 20

// PayloadType identifies the payload following the frame header.
type PayloadType uint8

const (
	PayloadCmdMoveRaw PayloadType = iota
	PayloadCmdRGBLED
	PayloadLH2RawData
	PayloadLH2Location
	PayloadAdvertisement
	PayloadGPSPosition
	PayloadDotBotData
	PayloadControlMode
	PayloadLH2Waypoints
	PayloadGPSWaypoints
	PayloadSailBotData
)

var payloadTypeName = map[PayloadType]string{
	PayloadCmdMoveRaw:    "move raw command",
	PayloadCmdRGBLED:     "rgb led command",
	PayloadLH2RawData:    "lh2 raw data",
	PayloadLH2Location:   "lh2 location",
	PayloadAdvertisement: "advertisement",
	PayloadGPSPosition:   "gps position",
	PayloadDotBotData:    "dotbot data",
	PayloadControlMode:   "control mode",
	PayloadLH2Waypoints:  "lh2 waypoints",
	PayloadGPSWaypoints:  "gps waypoints",
	PayloadSailBotData:   "sailbot data",
}

func (t PayloadType) String() string {
	if name, ok := payloadTypeName[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown (%d)", uint8(t))
}

// Application identifies the firmware application of the source device.
type Application uint8

const (
	ApplicationDotBot Application = iota
	ApplicationSailBot
)

var (
	// ErrFrameTooShort is returned for frames shorter than a header
	// plus payload type, or truncated payloads.
	ErrFrameTooShort = errors.New("protocol: frame too short")
	// ErrUnsupportedVersion is returned when the header carries a
	// version other than Version.
	ErrUnsupportedVersion = errors.New("protocol: unsupported protocol version")
	// ErrUnsupportedPayload is returned for payload types this
	// package does not decode.
	ErrUnsupportedPayload = errors.New("protocol: unsupported payload type")
)

// BroadcastAddress addresses every device in the swarm.
const BroadcastAddress = 0xffffffffffffffff

// Header precedes every payload on the wire, big-endian.
type Header struct {
	Destination uint64
	Source      uint64
	SwarmID     uint16
	Application Application
	Version     uint8
}

// ParseHeader decodes the 20-byte header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d byte header", ErrFrameTooShort, len(data))
	}
	return Header{
		Destination: binary.BigEndian.Uint64(data[0:8]),
		Source:      binary.BigEndian.Uint64(data[8:16]),
		SwarmID:     binary.BigEndian.Uint16(data[16:18]),
		Application: Application(data[18]),
		Version:     data[19],
	}, nil
}

// Bytes returns the 20-byte wire form of the header.
func (h Header) Bytes() []byte {
	var b [HeaderSize]byte
	binary.BigEndian.PutUint64(b[0:8], h.Destination)
	binary.BigEndian.PutUint64(b[8:16], h.Source)
	binary.BigEndian.PutUint16(b[16:18], h.SwarmID)
	b[18] = byte(h.Application)
	b[19] = h.Version
	return b[:]
}

// Payload is a decoded application payload.
type Payload interface {
	Type() PayloadType
	Bytes() []byte
}

// LH2RawData carries the two raw sweep samples of one measurement.
type LH2RawData struct {
	Locations [2]lh2.RawLocation
}

func (LH2RawData) Type() PayloadType { return PayloadLH2RawData }

func (d LH2RawData) Bytes() []byte {
	b := make([]byte, 0, 2*lh2.RawLocationSize)
	for _, loc := range d.Locations {
		b = append(b, loc.Bytes()...)
	}
	return b
}

func parseLH2RawData(data []byte) (Payload, error) {
	if len(data) < 2*lh2.RawLocationSize {
		return nil, fmt.Errorf("%w: %d byte lh2 raw data", ErrFrameTooShort, len(data))
	}
	var d LH2RawData
	for i := range d.Locations {
		loc, err := lh2.ParseRawLocation(data[i*lh2.RawLocationSize:])
		if err != nil {
			return nil, err
		}
		d.Locations[i] = loc
	}
	return d, nil
}

// LH2Location carries a position computed on the device:
// little-endian normalized coordinates scaled by 1e6.
type LH2Location struct {
	X, Y, Z uint32
}

func (LH2Location) Type() PayloadType { return PayloadLH2Location }

func (l LH2Location) Bytes() []byte {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:4], l.X)
	binary.LittleEndian.PutUint32(b[4:8], l.Y)
	binary.LittleEndian.PutUint32(b[8:12], l.Z)
	return b[:]
}

func parseLH2Location(data []byte) (Payload, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: %d byte lh2 location", ErrFrameTooShort, len(data))
	}
	return LH2Location{
		X: binary.LittleEndian.Uint32(data[0:4]),
		Y: binary.LittleEndian.Uint32(data[4:8]),
		Z: binary.LittleEndian.Uint32(data[8:12]),
	}, nil
}

// Advertisement is the empty presence beacon devices send while idle.
type Advertisement struct{}

func (Advertisement) Type() PayloadType { return PayloadAdvertisement }
func (Advertisement) Bytes() []byte     { return nil }

// Parse decodes a deframed serial payload into its header and
// application payload.
func Parse(data []byte) (Header, Payload, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	if header.Version != Version {
		return header, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}
	if len(data) < HeaderSize+1 {
		return header, nil, fmt.Errorf("%w: missing payload type", ErrFrameTooShort)
	}

	payloadType := PayloadType(data[HeaderSize])
	rest := data[HeaderSize+1:]

	var payload Payload
	switch payloadType {
	case PayloadLH2RawData:
		payload, err = parseLH2RawData(rest)
	case PayloadLH2Location:
		payload, err = parseLH2Location(rest)
	case PayloadAdvertisement:
		payload = Advertisement{}
	default:
		return header, nil, fmt.Errorf("%w: %s", ErrUnsupportedPayload, payloadType)
	}
	if err != nil {
		return header, nil, err
	}
	return header, payload, nil
}

// Marshal encodes a header and payload into a serial payload ready
// for framing.
func Marshal(header Header, payload Payload) []byte {
	b := make([]byte, 0, HeaderSize+1+2*lh2.RawLocationSize)
	b = append(b, header.Bytes()...)
	b = append(b, byte(payload.Type()))
	return append(b, payload.Bytes()...)
}
