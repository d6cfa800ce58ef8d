package localization

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"
	yaml "gopkg.in/yaml.v2"

	lh2 "github.com/DotBots/go-lh2"
)

var log = logging.MustGetLogger("lh2/localization")

// State of the calibration workflow.
type State int

const (
	NotCalibrated State = iota
	CalibrationInProgress
	Ready
	Calibrated
)

var stateName = map[State]string{
	NotCalibrated:         "not calibrated",
	CalibrationInProgress: "calibration in progress",
	Ready:                 "ready",
	Calibrated:            "calibrated",
}

func (s State) String() string {
	return stateName[s]
}

// DefaultReferencePoints are the floor positions, in meters, the four
// calibration samples are captured at.
var DefaultReferencePoints = []Point{
	{-0.1, 0.1},
	{0.1, 0.1},
	{-0.1, -0.1},
	{0.1, -0.1},
}

// CalibrationFile is the name of the calibration file inside the
// manager's directory.
const CalibrationFile = "calibration.yaml"

var (
	// ErrNotCalibrated is returned by ComputePosition before a
	// calibration is available.
	ErrNotCalibrated = errors.New("localization: not calibrated")
	// ErrNotReady is returned by ComputeCalibration before all
	// calibration points have been sampled.
	ErrNotReady = errors.New("localization: calibration points not ready")
	// ErrIncompleteRawData is returned when a measurement misses
	// sweep samples.
	ErrIncompleteRawData = errors.New("localization: incomplete raw data")
)

// Calibration holds the values derived from the calibration samples:
// the scale and plane normal from the inter-sweep homography
// decomposition, the rotation flattening camera rays onto the plane,
// and the homography onto the reference rectangle.
type Calibration struct {
	Zeta     float64       `yaml:"zeta"`
	Normal   [3]float64    `yaml:"normal"`
	Rotation [3][3]float64 `yaml:"rotation"`
	Floor    [3][3]float64 `yaml:"floor"`
}

func (c *Calibration) floor() *mat.Dense {
	m := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, c.Floor[i][j])
		}
	}
	return m
}

// Position is a localized point on the reference plane, in meters.
type Position struct {
	X, Y, Z float64
}

// Manager runs the lighthouse calibration workflow and computes
// positions from raw measurements once calibrated.
type Manager struct {
	ReferencePoints []Point

	state     State
	path      string
	current   *Calibration
	points    [2][]Point
	available []bool
}

// NewManager returns a manager persisting its calibration under dir.
// A calibration stored by an earlier run is loaded back.
func NewManager(dir string) *Manager {
	m := &Manager{
		ReferencePoints: DefaultReferencePoints,
		path:            filepath.Join(dir, CalibrationFile),
	}
	m.points[0] = make([]Point, len(m.ReferencePoints))
	m.points[1] = make([]Point, len(m.ReferencePoints))
	m.available = make([]bool, len(m.ReferencePoints))

	if calibration, err := loadCalibration(m.path); err == nil {
		m.current = calibration
		m.state = Calibrated
		log.Infof("loaded calibration from %s", m.path)
	}
	return m
}

// State returns the manager's workflow state.
func (m *Manager) State() State {
	return m.state
}

// cameraPoints projects a raw measurement onto the camera plane, one
// point per rotor.
func cameraPoints(raw lh2.RawData) ([2]Point, error) {
	var points [2]Point
	counts, err := raw.Counts()
	if err != nil {
		return points, err
	}
	xa, ya := lh2.CameraPoint(counts[0], counts[1], 0)
	xb, yb := lh2.CameraPoint(counts[2], counts[3], 2)
	points[0] = Point{xa, ya}
	points[1] = Point{xb, yb}
	return points, nil
}

// AddCalibrationPoint registers the measurement taken at reference
// point index.
func (m *Manager) AddCalibrationPoint(index int, raw lh2.RawData) error {
	if index < 0 || index >= len(m.ReferencePoints) {
		return fmt.Errorf("localization: calibration point index %d out of range", index)
	}
	points, err := cameraPoints(raw)
	if err != nil {
		return err
	}
	m.points[0][index] = points[0]
	m.points[1][index] = points[1]
	m.available[index] = true

	m.state = Ready
	for _, ok := range m.available {
		if !ok {
			m.state = CalibrationInProgress
			break
		}
	}
	log.Debugf("calibration point %d: rotor A %v, rotor B %v (%s)", index, points[0], points[1], m.state)
	return nil
}

// ComputeCalibration derives the calibration from the registered
// points and persists it.
func (m *Manager) ComputeCalibration() error {
	if m.state != Ready {
		return ErrNotReady
	}

	h, err := Homography(m.points[0], m.points[1])
	if err != nil {
		return err
	}

	var svd mat.SVD
	if !svd.Factorize(h, mat.SVDFull) {
		return errors.New("localization: SVD of inter-sweep homography failed")
	}
	sigma := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	s1 := sigma[0] / sigma[1]
	s3 := sigma[2] / sigma[1]
	zeta := s1 - s3
	a, b := unitize(math.Sqrt(1-s3*s3), math.Sqrt(s1*s1-1))

	var normal [3]float64
	for i := range normal {
		normal[i] = b*v.At(i, 0) + a*v.At(i, 2)
	}
	if normal[2] < 0 {
		for i := range normal {
			normal[i] = -normal[i]
		}
	}

	nxy := math.Hypot(normal[0], normal[1])
	if nxy == 0 {
		return errDegenerate
	}
	rotation := [3][3]float64{
		{-normal[1] / nxy, normal[0] / nxy, 0},
		{normal[0] * normal[2] / nxy, normal[1] * normal[2] / nxy, -nxy},
		{-normal[0], -normal[1], -normal[2]},
	}

	planar := make([]Point, len(m.points[1]))
	for i, pt := range m.points[1] {
		planar[i] = rotate(rotation, scale(zeta, normal, pt))
	}
	reference := make([]Point, len(m.ReferencePoints))
	for i, pt := range m.ReferencePoints {
		reference[i] = Point{pt[0] + 0.5, pt[1] + 0.5}
	}
	floor, err := Homography(planar, reference)
	if err != nil {
		return err
	}

	calibration := &Calibration{Zeta: zeta, Normal: normal, Rotation: rotation}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			calibration.Floor[i][j] = floor.At(i, j)
		}
	}

	if err := saveCalibration(m.path, calibration); err != nil {
		return err
	}
	m.current = calibration
	m.state = Calibrated
	log.Infof("calibration computed: zeta=%.6f normal=%v", zeta, normal)
	return nil
}

// ComputePosition localizes a raw measurement on the reference plane.
func (m *Manager) ComputePosition(raw lh2.RawData) (Position, error) {
	if m.state != Calibrated || m.current == nil {
		return Position{}, ErrNotCalibrated
	}
	if len(raw.Locations) < lh2.CountSlots {
		return Position{}, ErrIncompleteRawData
	}
	for _, loc := range raw.Locations {
		if loc.Bits == 0 {
			return Position{}, ErrIncompleteRawData
		}
	}

	points, err := cameraPoints(raw)
	if err != nil {
		return Position{}, err
	}

	// Rotor B's ray carries the position; rotor A anchors the
	// calibration scale.
	planar := rotate(m.current.Rotation, scale(m.current.Zeta, m.current.Normal, points[1]))
	pos := PerspectiveTransform(m.current.floor(), planar)
	return Position{X: pos[0], Y: 1 - pos[1], Z: 0}, nil
}

// scale lifts a camera point to its ray intersection with the sweep
// plane: s * (x, y, 1) with s = (1/zeta) / (n . (x, y, 1)).
func scale(zeta float64, normal [3]float64, pt Point) [3]float64 {
	s := (1 / zeta) / (normal[0]*pt[0] + normal[1]*pt[1] + normal[2])
	return [3]float64{s * pt[0], s * pt[1], s}
}

// rotate maps a scaled ray onto the plane coordinate frame and drops
// the out-of-plane component.
func rotate(r [3][3]float64, v [3]float64) Point {
	return Point{
		r[0][0]*v[0] + r[0][1]*v[1] + r[0][2]*v[2],
		r[1][0]*v[0] + r[1][1]*v[1] + r[1][2]*v[2],
	}
}

func unitize(x, y float64) (float64, float64) {
	magnitude := math.Hypot(x, y)
	return x / magnitude, y / magnitude
}

func loadCalibration(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	calibration := new(Calibration)
	if err := yaml.Unmarshal(data, calibration); err != nil {
		return nil, fmt.Errorf("localization: parsing %s: %w", path, err)
	}
	return calibration, nil
}

func saveCalibration(path string, calibration *Calibration) error {
	data, err := yaml.Marshal(calibration)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
