package geometry

import (
	"math"

	"github.com/ayusman/unmute/internal/detector"
)

// Letterform approximations. They are small combinations of the primitives,
// written for a right hand, and overlap freely; callers resolve ties by order.

// IsTwoUp reports index and middle extended with ring and pinky curled.
func (p Predicates) IsTwoUp(f detector.HandFrame) bool {
	return p.AreExtended(f, Index, Middle) && p.AreCurled(f, Ring, Pinky)
}

// AreIndexMiddleTogether reports the index and middle tips touching.
func (p Predicates) AreIndexMiddleTogether(f detector.HandFrame) bool {
	return p.Touching(f, detector.IndexTip, detector.MiddleTip, 1.5)
}

// isIndexHorizontal reports the index finger pointing more sideways than up.
func isIndexHorizontal(f detector.HandFrame) bool {
	v := sub(f.Points[detector.IndexTip], f.Points[detector.IndexMCP])
	return math.Abs(v.X) > math.Abs(v.Y)
}

func thumbIndexAngle(f detector.HandFrame) float64 {
	return Angle(f.Points[detector.ThumbMCP], f.Points[detector.ThumbTip],
		f.Points[detector.IndexMCP], f.Points[detector.IndexTip])
}

// IsCShape: curved hand with a gap between thumb and index, nothing folded.
func (p Predicates) IsCShape(f detector.HandFrame) bool {
	if !f.Valid() {
		return false
	}
	gap := Distance(f.Points[detector.ThumbTip], f.Points[detector.IndexTip])
	if gap <= p.T.TouchMax || gap >= p.T.CGapMax {
		return false
	}
	if p.IsThumbCurled(f) {
		return false
	}
	for _, finger := range AllFingers {
		if p.IsFingerCurled(f, finger) {
			return false
		}
	}
	return p.AreFingersClose(f)
}

// IsDShape: index up, thumb meeting the middle fingertip.
func (p Predicates) IsDShape(f detector.HandFrame) bool {
	return p.IsExtended(f, Index) &&
		p.Touching(f, detector.ThumbTip, detector.MiddleTip, 1) &&
		!p.IsExtended(f, Ring) && !p.IsExtended(f, Pinky)
}

// IsEShape: fingers folded over a thumb tucked below the fingertips.
func (p Predicates) IsEShape(f detector.HandFrame) bool {
	return p.AreCurled(f, AllFingers...) &&
		!p.IsThumbExtended(f) &&
		f.Points[detector.ThumbTip].Y > f.Points[detector.IndexTip].Y &&
		p.Touching(f, detector.ThumbTip, detector.MiddleTip, 1)
}

// IsFShape: thumb and index pinched, the other three fingers extended.
func (p Predicates) IsFShape(f detector.HandFrame) bool {
	return p.Touching(f, detector.ThumbTip, detector.IndexTip, 1) &&
		!p.Touching(f, detector.ThumbTip, detector.MiddleTip, 1.5) &&
		p.AreExtended(f, Middle, Ring, Pinky)
}

// IsGShape: index pointing sideways with the thumb parallel to it.
func (p Predicates) IsGShape(f detector.HandFrame) bool {
	return p.IsThumbExtended(f) &&
		p.IsExtended(f, Index) &&
		p.AreCurled(f, Middle, Ring, Pinky) &&
		isIndexHorizontal(f) &&
		thumbIndexAngle(f) < p.T.GAngleMax
}

// IsHShape: index and middle together, pointing sideways.
func (p Predicates) IsHShape(f detector.HandFrame) bool {
	return p.IsTwoUp(f) && p.AreIndexMiddleTogether(f) && isIndexHorizontal(f)
}

// IsKShape: index and middle up with the thumb resting between them.
func (p Predicates) IsKShape(f detector.HandFrame) bool {
	if !p.IsTwoUp(f) || p.IsThumbCurled(f) {
		return false
	}
	return p.Touching(f, detector.ThumbTip, detector.MiddlePIP, 1.5) ||
		p.Touching(f, detector.ThumbTip, detector.IndexPIP, 1.5)
}

// IsLShape: thumb and index extended at roughly a right angle.
func (p Predicates) IsLShape(f detector.HandFrame) bool {
	return p.IsThumbExtended(f) &&
		p.IsExtended(f, Index) &&
		p.AreCurled(f, Middle, Ring, Pinky) &&
		thumbIndexAngle(f) >= p.T.LAngleMin
}

// IsOShape: thumb tip meeting the index tip with the middle tip close by.
func (p Predicates) IsOShape(f detector.HandFrame) bool {
	return p.Touching(f, detector.ThumbTip, detector.IndexTip, 1) &&
		p.Touching(f, detector.ThumbTip, detector.MiddleTip, 1.5)
}

// IsRShape: index and middle up and crossed. Crossed means the tips have
// swapped sides relative to the knuckle line, which holds under mirroring.
func (p Predicates) IsRShape(f detector.HandFrame) bool {
	if !p.IsTwoUp(f) {
		return false
	}
	axis := sub(f.Points[detector.MiddleMCP], f.Points[detector.IndexMCP])
	tips := sub(f.Points[detector.IndexTip], f.Points[detector.MiddleTip])
	return axis.X*tips.X+axis.Y*tips.Y > 0
}

// IsTShape: fist with the thumb tip at the index PIP.
func (p Predicates) IsTShape(f detector.HandFrame) bool {
	return p.AreCurled(f, AllFingers...) &&
		!p.IsThumbExtended(f) &&
		p.Touching(f, detector.ThumbTip, detector.IndexPIP, 1)
}

// IsXShape: index raised and hooked, the rest folded.
func (p Predicates) IsXShape(f detector.HandFrame) bool {
	if !p.AreCurled(f, Middle, Ring, Pinky) || p.IsFingerCurled(f, Index) {
		return false
	}
	pts := f.Points
	hooked := pts[detector.IndexTip].Y > pts[detector.IndexDIP].Y
	raise := pts[detector.IndexMCP].Y - pts[detector.IndexPIP].Y
	return hooked && raise > p.T.XRaiseRatio*Distance(pts[detector.IndexMCP], pts[detector.Wrist])
}
