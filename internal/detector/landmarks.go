// Package detector provides hand detection interfaces and landmark frame types for sign recognition.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the landmark model.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// CoordinateSpace declares the unit system of a frame's landmarks.
type CoordinateSpace string

const (
	// SpaceImageNormalized means x,y are in [0,1] relative to the image
	// (y grows downward) and z is a relative depth with no fixed unit.
	SpaceImageNormalized CoordinateSpace = "image"
	// SpaceWorldMetric means x,y,z are meters in a hand-centered frame.
	SpaceWorldMetric CoordinateSpace = "world"
)

// Normalize maps unknown or empty values to SpaceImageNormalized.
func (s CoordinateSpace) Normalize() CoordinateSpace {
	if s == SpaceWorldMetric {
		return SpaceWorldMetric
	}
	return SpaceImageNormalized
}

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandFrame is one hand's landmark set at one instant.
// A well-formed frame carries exactly NumLandmarks points; anything else is
// a partial detection and every consumer treats it as "no result".
type HandFrame struct {
	Points     []Point3D       `json:"points"`
	Space      CoordinateSpace `json:"space,omitempty"`
	Handedness string          `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64         `json:"score,omitempty"`
}

// Hand pairs an image-space frame with the optional metric frame produced
// for the same observation.
type Hand struct {
	Image HandFrame  `json:"image"`
	World *HandFrame `json:"world,omitempty"`
}

// Valid reports whether the frame has exactly NumLandmarks points.
func (f HandFrame) Valid() bool {
	return len(f.Points) == NumLandmarks
}

// Mirror returns a copy of the frame reflected on the x axis, turning a left
// hand into a right hand. Image frames reflect around x=0.5, world frames
// around the hand origin.
func (f HandFrame) Mirror() HandFrame {
	out := f
	out.Points = make([]Point3D, len(f.Points))
	for i, p := range f.Points {
		if f.Space.Normalize() == SpaceWorldMetric {
			p.X = -p.X
		} else {
			p.X = 1 - p.X
		}
		out.Points[i] = p
	}
	return out
}
