package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []Hand
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ThumbPose selects one of the preset thumb placements used by PoseFrame.
type ThumbPose int

const (
	// ThumbTucked folds the thumb across the palm.
	ThumbTucked ThumbPose = iota
	// ThumbOut points the thumb diagonally away from the palm.
	ThumbOut
	// ThumbAlongside rests the thumb against the side of the index finger.
	ThumbAlongside
	// ThumbHorizontal holds the thumb out sideways, roughly level.
	ThumbHorizontal
)

// FingerPose selects one of the preset finger placements used by PoseFrame.
type FingerPose int

const (
	FingerCurled FingerPose = iota
	FingerSpread
	FingerTogether
)

var (
	fixtureWrist = Point3D{X: 0.5, Y: 0.9}

	fixtureMCP = [4]Point3D{
		{X: 0.58, Y: 0.62},
		{X: 0.5, Y: 0.6},
		{X: 0.43, Y: 0.62},
		{X: 0.37, Y: 0.66},
	}

	fixtureThumbs = map[ThumbPose][4]Point3D{
		ThumbTucked: {
			{X: 0.57, Y: 0.86}, {X: 0.61, Y: 0.81, Z: -0.01},
			{X: 0.58, Y: 0.77, Z: -0.02}, {X: 0.54, Y: 0.76, Z: -0.03},
		},
		ThumbOut: {
			{X: 0.58, Y: 0.85}, {X: 0.65, Y: 0.78},
			{X: 0.71, Y: 0.72}, {X: 0.77, Y: 0.66},
		},
		ThumbAlongside: {
			{X: 0.57, Y: 0.86}, {X: 0.62, Y: 0.8},
			{X: 0.63, Y: 0.74}, {X: 0.63, Y: 0.69},
		},
		ThumbHorizontal: {
			{X: 0.58, Y: 0.85}, {X: 0.66, Y: 0.8},
			{X: 0.74, Y: 0.78}, {X: 0.82, Y: 0.77},
		},
	}

	// PIP, DIP, tip for each finger, index first.
	fixtureSpread = [4][3]Point3D{
		{{X: 0.607, Y: 0.507}, {X: 0.625, Y: 0.432}, {X: 0.64, Y: 0.37}},
		{{X: 0.5, Y: 0.474}, {X: 0.5, Y: 0.39}, {X: 0.5, Y: 0.32}},
		{{X: 0.403, Y: 0.507}, {X: 0.385, Y: 0.432}, {X: 0.37, Y: 0.37}},
		{{X: 0.325, Y: 0.57}, {X: 0.295, Y: 0.51}, {X: 0.27, Y: 0.46}},
	}
	fixtureTogether = [4][3]Point3D{
		{{X: 0.576, Y: 0.507}, {X: 0.573, Y: 0.432}, {X: 0.57, Y: 0.37}},
		{{X: 0.504, Y: 0.474}, {X: 0.507, Y: 0.39}, {X: 0.51, Y: 0.32}},
		{{X: 0.439, Y: 0.507}, {X: 0.445, Y: 0.432}, {X: 0.45, Y: 0.37}},
		{{X: 0.384, Y: 0.57}, {X: 0.393, Y: 0.51}, {X: 0.4, Y: 0.46}},
	}
)

// PoseFrame assembles a right-hand image-space frame from preset thumb and
// finger placements. The palm (wrist and knuckles) is identical across poses.
func PoseFrame(thumb ThumbPose, index, middle, ring, pinky FingerPose) HandFrame {
	points := make([]Point3D, 0, NumLandmarks)
	points = append(points, fixtureWrist)
	th := fixtureThumbs[thumb]
	points = append(points, th[:]...)

	for i, pose := range [4]FingerPose{index, middle, ring, pinky} {
		mcp := fixtureMCP[i]
		points = append(points, mcp)
		switch pose {
		case FingerSpread:
			points = append(points, fixtureSpread[i][:]...)
		case FingerTogether:
			points = append(points, fixtureTogether[i][:]...)
		default:
			points = append(points,
				Point3D{X: mcp.X + 0.01, Y: mcp.Y - 0.07, Z: -0.03},
				Point3D{X: mcp.X + 0.01, Y: mcp.Y - 0.01, Z: -0.03},
				Point3D{X: mcp.X, Y: mcp.Y + 0.03, Z: -0.03},
			)
		}
	}

	return HandFrame{
		Points:     points,
		Space:      SpaceImageNormalized,
		Handedness: HandRight,
		Score:      0.95,
	}
}

// FistFrame returns a closed fist with the thumb folded in.
func FistFrame() HandFrame {
	return PoseFrame(ThumbTucked, FingerCurled, FingerCurled, FingerCurled, FingerCurled)
}

// PointingFrame returns an index finger pointing up, everything else folded.
func PointingFrame() HandFrame {
	return PoseFrame(ThumbTucked, FingerSpread, FingerCurled, FingerCurled, FingerCurled)
}

// OpenPalmFrame returns all five digits extended and spread.
func OpenPalmFrame() HandFrame {
	return PoseFrame(ThumbOut, FingerSpread, FingerSpread, FingerSpread, FingerSpread)
}

// ThankYouFrame returns a flat hand with the fingers held together.
func ThankYouFrame() HandFrame {
	f := PoseFrame(ThumbAlongside, FingerTogether, FingerTogether, FingerTogether, FingerTogether)
	for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
		f.Points[tip].Z = -0.01
	}
	return f
}

// ILoveYouFrame returns thumb, index and pinky extended.
func ILoveYouFrame() HandFrame {
	return PoseFrame(ThumbOut, FingerSpread, FingerCurled, FingerCurled, FingerSpread)
}

// WorldFixture converts an image-space fixture into a plausible metric frame
// centered on the middle knuckle, roughly 30cm across the full image.
func WorldFixture(f HandFrame) *HandFrame {
	out := f
	out.Space = SpaceWorldMetric
	out.Points = make([]Point3D, len(f.Points))
	var origin Point3D
	if len(f.Points) > MiddleMCP {
		origin = f.Points[MiddleMCP]
	}
	for i, p := range f.Points {
		out.Points[i] = Point3D{
			X: (p.X - origin.X) * 0.3,
			Y: (p.Y - origin.Y) * 0.3,
			Z: p.Z * 0.3,
		}
	}
	return &out
}

// HandOf wraps an image frame, and optionally its world counterpart, as a Hand.
func HandOf(image HandFrame, world *HandFrame) Hand {
	return Hand{Image: image, World: world}
}
