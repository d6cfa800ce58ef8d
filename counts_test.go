package lh2

import (
	"errors"
	"testing"

	"github.com/DotBots/go-lh2/lfsr"
)

func location(poly int, count uint32) RawLocation {
	state := lfsr.Forward(poly, lfsr.Seed, count)
	return RawLocation{
		Bits:       uint64(state) << 47,
		Polynomial: uint8(poly),
		Offset:     0,
	}
}

func TestCounts(t *testing.T) {
	raw := RawData{Locations: []RawLocation{
		location(0, 1200),
		location(1, 40000),
		location(2, 8192),
		location(3, 131000),
	}}

	counts, err := raw.Counts()
	if err != nil {
		t.Fatal(err)
	}
	want := [CountSlots]uint32{1200, 40000, 8192, 131000}
	if counts != want {
		t.Fatalf("counts %v, want %v", counts, want)
	}
}

func TestCountsSlotOrder(t *testing.T) {
	// Slots are assigned by rotor and arrival order, not polynomial
	// value: rotor B samples arriving first still land in slots 2-3.
	raw := RawData{Locations: []RawLocation{
		location(3, 777),
		location(2, 888),
		location(1, 999),
	}}

	counts, err := raw.Counts()
	if err != nil {
		t.Fatal(err)
	}
	want := [CountSlots]uint32{999, 0, 777, 888}
	if counts != want {
		t.Fatalf("counts %v, want %v", counts, want)
	}
}

func TestCountsSurplusDropped(t *testing.T) {
	raw := RawData{Locations: []RawLocation{
		location(2, 10), location(3, 20), location(2, 30),
	}}

	counts, err := raw.Counts()
	if err != nil {
		t.Fatal(err)
	}
	want := [CountSlots]uint32{0, 0, 10, 20}
	if counts != want {
		t.Fatalf("counts %v, want %v", counts, want)
	}
}

func TestCountsInvalidPolynomial(t *testing.T) {
	raw := RawData{Locations: []RawLocation{
		{Bits: 1 << 47, Polynomial: 9},
	}}
	if _, err := raw.Counts(); !errors.Is(err, lfsr.ErrInvalidPolynomial) {
		t.Fatalf("got %v, want ErrInvalidPolynomial", err)
	}
}

func TestCountsNotInSequence(t *testing.T) {
	raw := RawData{Locations: []RawLocation{
		{Bits: 0, Polynomial: 0},
	}}
	if _, err := raw.Counts(); !errors.Is(err, lfsr.ErrNotInSequence) {
		t.Fatalf("got %v, want ErrNotInSequence", err)
	}
}
