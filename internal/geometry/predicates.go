package geometry

import (
	"math"

	"github.com/ayusman/unmute/internal/detector"
)

// Finger names one of the four non-thumb fingers.
type Finger int

const (
	Index Finger = iota
	Middle
	Ring
	Pinky
)

// AllFingers lists the non-thumb fingers from index to pinky.
var AllFingers = []Finger{Index, Middle, Ring, Pinky}

func (f Finger) String() string {
	switch f {
	case Index:
		return "index"
	case Middle:
		return "middle"
	case Ring:
		return "ring"
	case Pinky:
		return "pinky"
	}
	return "unknown"
}

// Joints returns the landmark indices of the finger's tip, PIP and MCP.
func (f Finger) Joints() (tip, pip, mcp int) {
	switch f {
	case Index:
		return detector.IndexTip, detector.IndexPIP, detector.IndexMCP
	case Middle:
		return detector.MiddleTip, detector.MiddlePIP, detector.MiddleMCP
	case Ring:
		return detector.RingTip, detector.RingPIP, detector.RingMCP
	default:
		return detector.PinkyTip, detector.PinkyPIP, detector.PinkyMCP
	}
}

// Distance returns the Euclidean distance between a and b in 3D.
func Distance(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Distance2D returns the Euclidean distance between a and b ignoring depth.
func Distance2D(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Angle returns the angle in degrees between the vectors from->to of a and b.
// Degenerate vectors give 0.
func Angle(aFrom, aTo, bFrom, bTo detector.Point3D) float64 {
	u := sub(aTo, aFrom)
	v := sub(bTo, bFrom)
	nu := norm(u)
	nv := norm(v)
	if nu == 0 || nv == 0 {
		return 0
	}
	c := (u.X*v.X + u.Y*v.Y + u.Z*v.Z) / (nu * nv)
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * 180 / math.Pi
}

func sub(a, b detector.Point3D) detector.Point3D {
	return detector.Point3D{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func norm(p detector.Point3D) float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

func midpoint(a, b detector.Point3D) detector.Point3D {
	return detector.Point3D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}

// HasDepth reports whether any landmark carries a non-zero z.
func HasDepth(f detector.HandFrame) bool {
	if !f.Valid() {
		return false
	}
	for _, p := range f.Points {
		if p.Z != 0 {
			return true
		}
	}
	return false
}

// Predicates evaluates landmark predicates against one threshold set.
// The zero value is not useful; obtain one from Profile.ForSpace or New.
type Predicates struct {
	T Thresholds
}

// New binds predicates to t.
func New(t Thresholds) Predicates {
	return Predicates{T: t}
}

// IsFingerExtended reports whether the finger given by its joint indices is
// extended. The tip must be sufficiently farther from the wrist than the MCP
// and the distal segment must not be folded onto the proximal one.
func (p Predicates) IsFingerExtended(f detector.HandFrame, tip, pip, mcp int) bool {
	if !f.Valid() {
		return false
	}
	if p.T.Simple2D {
		return p.IsFingerExtendedSimple(f, tip, pip)
	}
	w := f.Points[detector.Wrist]
	tipWrist := Distance(f.Points[tip], w)
	mcpWrist := Distance(f.Points[mcp], w)
	if mcpWrist >= p.T.ExtensionRatio*tipWrist {
		return false
	}
	return Distance(f.Points[tip], f.Points[pip]) > p.T.SegmentRatio*Distance(f.Points[pip], f.Points[mcp])
}

// IsFingerExtendedSimple is the 2D fallback: the tip sits above the PIP
// (smaller y) by at least SimpleMargin.
func (p Predicates) IsFingerExtendedSimple(f detector.HandFrame, tip, pip int) bool {
	if !f.Valid() {
		return false
	}
	return f.Points[tip].Y < f.Points[pip].Y-p.T.SimpleMargin
}

// IsExtended is IsFingerExtended keyed by finger.
func (p Predicates) IsExtended(f detector.HandFrame, finger Finger) bool {
	tip, pip, mcp := finger.Joints()
	return p.IsFingerExtended(f, tip, pip, mcp)
}

// IsFingerCurled reports whether finger is folded back with its tip near its
// own MCP. A finger that is merely not extended is not necessarily curled.
func (p Predicates) IsFingerCurled(f detector.HandFrame, finger Finger) bool {
	if !f.Valid() || p.IsExtended(f, finger) {
		return false
	}
	tip, _, mcp := finger.Joints()
	reach := Distance(f.Points[mcp], f.Points[detector.Wrist])
	return Distance(f.Points[tip], f.Points[mcp]) < p.T.CurlRatio.Get(finger)*reach
}

// AreCurled reports whether every listed finger is curled.
func (p Predicates) AreCurled(f detector.HandFrame, fingers ...Finger) bool {
	if !f.Valid() {
		return false
	}
	for _, finger := range fingers {
		if !p.IsFingerCurled(f, finger) {
			return false
		}
	}
	return true
}

// AreExtended reports whether every listed finger is extended.
func (p Predicates) AreExtended(f detector.HandFrame, fingers ...Finger) bool {
	if !f.Valid() {
		return false
	}
	for _, finger := range fingers {
		if !p.IsExtended(f, finger) {
			return false
		}
	}
	return true
}

func palmWidth(f detector.HandFrame) float64 {
	return Distance(f.Points[detector.Wrist], f.Points[detector.IndexMCP])
}

// IsThumbExtended reports whether the thumb tip is away from the palm centre
// by more than ThumbExtensionRatio of the wrist to index-MCP distance.
func (p Predicates) IsThumbExtended(f detector.HandFrame) bool {
	if !f.Valid() {
		return false
	}
	center := midpoint(f.Points[detector.Wrist], f.Points[detector.IndexMCP])
	return Distance(f.Points[detector.ThumbTip], center) > p.T.ThumbExtensionRatio*palmWidth(f)
}

// IsThumbCurled reports whether the thumb is tucked across the palm toward
// the middle knuckle.
func (p Predicates) IsThumbCurled(f detector.HandFrame) bool {
	if !f.Valid() || p.IsThumbExtended(f) {
		return false
	}
	return Distance(f.Points[detector.ThumbTip], f.Points[detector.MiddleMCP]) < p.T.ThumbCurlRatio*palmWidth(f)
}

// CountExtendedFingers returns how many of the four non-thumb fingers are extended.
func (p Predicates) CountExtendedFingers(f detector.HandFrame) int {
	if !f.Valid() {
		return 0
	}
	n := 0
	for _, finger := range AllFingers {
		if p.IsExtended(f, finger) {
			n++
		}
	}
	return n
}

// AreFingersClose reports whether every adjacent pair of fingertips is
// within FingersCloseMax.
func (p Predicates) AreFingersClose(f detector.HandFrame) bool {
	if !f.Valid() {
		return false
	}
	// Image z has no fixed unit, so image gaps are measured in the plane.
	dist := Distance
	if f.Space.Normalize() == detector.SpaceImageNormalized {
		dist = Distance2D
	}
	tips := []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	maxGap := 0.0
	for i := 0; i+1 < len(tips); i++ {
		maxGap = math.Max(maxGap, dist(f.Points[tips[i]], f.Points[tips[i+1]]))
	}
	return maxGap < p.T.FingersCloseMax
}

// IsHandFlat reports whether the fingertips share a depth within
// FlatDepthMax. Frames without depth are never flat.
func (p Predicates) IsHandFlat(f detector.HandFrame) bool {
	if !HasDepth(f) {
		return false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, tip := range []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip} {
		z := f.Points[tip].Z
		lo = math.Min(lo, z)
		hi = math.Max(hi, z)
	}
	return hi-lo < p.T.FlatDepthMax
}

// Touching reports whether landmarks a and b are within TouchMax scaled by k.
func (p Predicates) Touching(f detector.HandFrame, a, b int, k float64) bool {
	if !f.Valid() {
		return false
	}
	return Distance(f.Points[a], f.Points[b]) < p.T.TouchMax*k
}
