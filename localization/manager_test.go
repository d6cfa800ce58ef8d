package localization

import (
	"errors"
	"math"
	"testing"

	lh2 "github.com/DotBots/go-lh2"
	"github.com/DotBots/go-lh2/lfsr"
)

func location(poly int, count uint32) lh2.RawLocation {
	state := lfsr.Forward(poly, lfsr.Seed, count)
	return lh2.RawLocation{
		Bits:       uint64(state) << 47,
		Polynomial: uint8(poly),
	}
}

func rawData(a1, a2, b1, b2 uint32) lh2.RawData {
	return lh2.RawData{Locations: []lh2.RawLocation{
		location(0, a1), location(1, a2), location(2, b1), location(3, b2),
	}}
}

// Sweep count pairs spread over the camera plane, one measurement per
// reference point.
var calibrationSamples = []lh2.RawData{
	rawData(1000, 2000, 1200, 2300),
	rawData(2500, 4500, 2700, 4100),
	rawData(1000, 4000, 900, 4200),
	rawData(3750, 5250, 3900, 5600),
}

func TestManagerCalibrationWorkflow(t *testing.T) {
	m := NewManager(t.TempDir())
	if m.State() != NotCalibrated {
		t.Fatalf("fresh manager state %v", m.State())
	}
	if err := m.ComputeCalibration(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("got %v, want ErrNotReady", err)
	}
	if _, err := m.ComputePosition(calibrationSamples[0]); !errors.Is(err, ErrNotCalibrated) {
		t.Fatalf("got %v, want ErrNotCalibrated", err)
	}

	for i, raw := range calibrationSamples {
		if err := m.AddCalibrationPoint(i, raw); err != nil {
			t.Fatal(err)
		}
		want := CalibrationInProgress
		if i == len(calibrationSamples)-1 {
			want = Ready
		}
		if m.State() != want {
			t.Fatalf("after point %d: state %v, want %v", i, m.State(), want)
		}
	}

	if err := m.ComputeCalibration(); err != nil {
		t.Fatal(err)
	}
	if m.State() != Calibrated {
		t.Fatalf("state %v after calibration", m.State())
	}

	pos, err := m.ComputePosition(rawData(1500, 2800, 1600, 3000))
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) {
		t.Fatalf("position %+v is not finite", pos)
	}

	// determinism
	again, err := m.ComputePosition(rawData(1500, 2800, 1600, 3000))
	if err != nil || again != pos {
		t.Fatalf("recomputed position %+v, %v, want %+v", again, err, pos)
	}
}

func TestManagerPersistence(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(dir)
	for i, raw := range calibrationSamples {
		if err := m.AddCalibrationPoint(i, raw); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.ComputeCalibration(); err != nil {
		t.Fatal(err)
	}
	pos, err := m.ComputePosition(calibrationSamples[2])
	if err != nil {
		t.Fatal(err)
	}

	// a fresh manager picks the calibration back up from disk
	reloaded := NewManager(dir)
	if reloaded.State() != Calibrated {
		t.Fatalf("reloaded state %v", reloaded.State())
	}
	got, err := reloaded.ComputePosition(calibrationSamples[2])
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.X-pos.X) > 1e-9 || math.Abs(got.Y-pos.Y) > 1e-9 {
		t.Fatalf("reloaded position %+v, want %+v", got, pos)
	}
}

func TestManagerIncompleteRawData(t *testing.T) {
	m := NewManager(t.TempDir())
	m.current = &Calibration{
		Zeta:     1,
		Normal:   [3]float64{0.6, 0.0, 0.8},
		Rotation: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Floor:    [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
	m.state = Calibrated

	missing := lh2.RawData{Locations: []lh2.RawLocation{location(0, 10), location(1, 20)}}
	if _, err := m.ComputePosition(missing); !errors.Is(err, ErrIncompleteRawData) {
		t.Fatalf("got %v, want ErrIncompleteRawData", err)
	}

	zeroed := rawData(10, 20, 30, 40)
	zeroed.Locations[2].Bits = 0
	if _, err := m.ComputePosition(zeroed); !errors.Is(err, ErrIncompleteRawData) {
		t.Fatalf("got %v, want ErrIncompleteRawData", err)
	}
}

func TestManagerPositionGeometry(t *testing.T) {
	// With zeta 1, a flat normal pointing along z, identity rotation
	// and identity floor homography, the position reduces to rotor
	// B's camera point with the y axis flipped.
	m := NewManager(t.TempDir())
	m.current = &Calibration{
		Zeta:     1,
		Normal:   [3]float64{0, 0, 1},
		Rotation: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Floor:    [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
	m.state = Calibrated

	raw := rawData(100, 200, 300, 400)
	counts, err := raw.Counts()
	if err != nil {
		t.Fatal(err)
	}
	wantX, wantY := lh2.CameraPoint(counts[2], counts[3], 2)

	pos, err := m.ComputePosition(raw)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pos.X-wantX) > 1e-12 || math.Abs(pos.Y-(1-wantY)) > 1e-12 {
		t.Fatalf("position %+v, want (%v, %v)", pos, wantX, 1-wantY)
	}
	if pos.Z != 0 {
		t.Fatalf("z = %v", pos.Z)
	}
}

func TestAddCalibrationPointOutOfRange(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.AddCalibrationPoint(7, calibrationSamples[0]); err == nil {
		t.Fatal("expected error for out of range index")
	}
}
