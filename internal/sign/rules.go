package sign

import (
	"github.com/ayusman/unmute/internal/detector"
	"github.com/ayusman/unmute/internal/geometry"
)

// Labels produced by the default rule lists.
const (
	LabelILoveYou = "I Love You"
	LabelHello    = "Hello"
	LabelYes      = "Yes"
	LabelFour     = "4"
	LabelOne      = "1"
	LabelPointing = "Pointing"
	LabelThankYou = "Thank You"
)

// Rule maps a predicate over a right-hand frame to a fixed label and confidence.
type Rule struct {
	Label      string
	Confidence float64
	Match      func(p geometry.Predicates, f detector.HandFrame) bool
}

var (
	index  = geometry.Index
	middle = geometry.Middle
	ring   = geometry.Ring
	pinky  = geometry.Pinky
)

// DefaultRules returns the base rule list in priority order: distinctive
// multi-finger shapes first, then finger counts, then single-finger shapes.
// The first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{LabelILoveYou, 0.95, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.IsThumbExtended(f) && p.AreExtended(f, index, pinky) && p.AreCurled(f, middle, ring)
		}},
		{"Y", 0.90, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.IsThumbExtended(f) && p.IsExtended(f, pinky) && p.AreCurled(f, index, middle, ring)
		}},
		{"L", 0.90, geometry.Predicates.IsLShape},
		{"F", 0.85, geometry.Predicates.IsFShape},
		{"W", 0.85, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.AreExtended(f, index, middle, ring) && p.IsFingerCurled(f, pinky)
		}},
		{"K", 0.80, geometry.Predicates.IsKShape},
		{"R", 0.80, geometry.Predicates.IsRShape},
		{"H", 0.80, geometry.Predicates.IsHShape},
		{"U", 0.80, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.IsTwoUp(f) && p.AreIndexMiddleTogether(f)
		}},
		{"V", 0.85, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.IsTwoUp(f) && !p.AreIndexMiddleTogether(f)
		}},
		{"O", 0.85, geometry.Predicates.IsOShape},
		{"D", 0.85, geometry.Predicates.IsDShape},
		{LabelHello, 0.80, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.CountExtendedFingers(f) == 4 && p.IsThumbExtended(f)
		}},
		{"B", 0.80, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.CountExtendedFingers(f) == 4 && p.AreFingersClose(f) && !p.IsThumbExtended(f)
		}},
		{LabelFour, 0.75, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.CountExtendedFingers(f) == 4
		}},
		{"C", 0.75, geometry.Predicates.IsCShape},
		{"E", 0.75, geometry.Predicates.IsEShape},
		{"T", 0.75, geometry.Predicates.IsTShape},
		{"X", 0.75, geometry.Predicates.IsXShape},
		{"G", 0.75, geometry.Predicates.IsGShape},
		{LabelYes, 0.85, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.AreCurled(f, geometry.AllFingers...) && !p.IsThumbExtended(f)
		}},
		{LabelOne, 0.75, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.IsExtended(f, index) && p.AreCurled(f, middle, ring, pinky)
		}},
		{"I", 0.80, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.IsExtended(f, pinky) && p.AreCurled(f, index, middle, ring)
		}},
	}
}

// CustomRules returns the overlay gestures. A match here replaces whatever
// the base list produced for the same observation.
func CustomRules() []Rule {
	return []Rule{
		{LabelPointing, 0.95, func(p geometry.Predicates, f detector.HandFrame) bool {
			return p.IsExtended(f, index) && p.AreCurled(f, middle, ring, pinky) && !p.IsThumbExtended(f)
		}},
		{LabelThankYou, 0.90, func(p geometry.Predicates, f detector.HandFrame) bool {
			if p.CountExtendedFingers(f) != 4 || !p.AreFingersClose(f) {
				return false
			}
			return !geometry.HasDepth(f) || p.IsHandFlat(f)
		}},
	}
}
