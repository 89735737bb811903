// Package geometry implements pure predicates over 21-point hand landmark
// frames. Every predicate fails closed: a frame without exactly
// detector.NumLandmarks points yields false.
package geometry

import "github.com/ayusman/unmute/internal/detector"

// FingerRatios holds one value per non-thumb finger.
type FingerRatios struct {
	Index  float64 `yaml:"index" json:"index"`
	Middle float64 `yaml:"middle" json:"middle"`
	Ring   float64 `yaml:"ring" json:"ring"`
	Pinky  float64 `yaml:"pinky" json:"pinky"`
}

// Get returns the ratio for finger.
func (r FingerRatios) Get(finger Finger) float64 {
	switch finger {
	case Index:
		return r.Index
	case Middle:
		return r.Middle
	case Ring:
		return r.Ring
	default:
		return r.Pinky
	}
}

// Thresholds holds every tunable constant used by the predicates.
// Ratios are relative to hand size and shared by both coordinate spaces;
// the absolute distances (the *Max fields) differ per space.
type Thresholds struct {
	// ExtensionRatio: a finger is extended when its MCP-to-wrist distance is
	// below this fraction of its tip-to-wrist distance.
	ExtensionRatio float64 `yaml:"extension_ratio" json:"extension_ratio"`
	// SegmentRatio: the tip-to-PIP segment must exceed this fraction of PIP-to-MCP.
	SegmentRatio float64 `yaml:"segment_ratio" json:"segment_ratio"`

	ThumbExtensionRatio float64      `yaml:"thumb_extension_ratio" json:"thumb_extension_ratio"`
	ThumbCurlRatio      float64      `yaml:"thumb_curl_ratio" json:"thumb_curl_ratio"`
	CurlRatio           FingerRatios `yaml:"curl_ratio" json:"curl_ratio"`

	FingersCloseMax float64 `yaml:"fingers_close_max" json:"fingers_close_max"`
	FlatDepthMax    float64 `yaml:"flat_depth_max" json:"flat_depth_max"`
	TouchMax        float64 `yaml:"touch_max" json:"touch_max"`
	CGapMax         float64 `yaml:"c_gap_max" json:"c_gap_max"`

	XRaiseRatio float64 `yaml:"x_raise_ratio" json:"x_raise_ratio"`
	LAngleMin   float64 `yaml:"l_angle_min" json:"l_angle_min"` // degrees
	GAngleMax   float64 `yaml:"g_angle_max" json:"g_angle_max"` // degrees

	// Simple2D switches finger extension to the tip-above-PIP test.
	// It is less accurate once the hand rotates toward horizontal.
	Simple2D     bool    `yaml:"simple_2d" json:"simple_2d"`
	SimpleMargin float64 `yaml:"simple_margin" json:"simple_margin"`
}

// DefaultThresholds returns the tuned constants for space.
func DefaultThresholds(space detector.CoordinateSpace) Thresholds {
	t := Thresholds{
		ExtensionRatio:      0.9,
		SegmentRatio:        0.4,
		ThumbExtensionRatio: 0.5,
		ThumbCurlRatio:      0.7,
		CurlRatio:           FingerRatios{Index: 0.6, Middle: 0.6, Ring: 0.65, Pinky: 0.75},
		XRaiseRatio:         0.3,
		LAngleMin:           60,
		GAngleMax:           30,
	}

	if space.Normalize() == detector.SpaceWorldMetric {
		t.FingersCloseMax = 0.035
		t.FlatDepthMax = 0.03
		t.TouchMax = 0.025
		t.CGapMax = 0.07
		t.SimpleMargin = 0.01
		return t
	}

	t.FingersCloseMax = 0.12
	t.FlatDepthMax = 0.08
	t.TouchMax = 0.06
	t.CGapMax = 0.2
	t.SimpleMargin = 0.02
	return t
}

// Profile pairs the threshold sets for both coordinate spaces.
type Profile struct {
	Image Thresholds `yaml:"image" json:"image"`
	World Thresholds `yaml:"world" json:"world"`
}

// DefaultProfile returns the default image and world thresholds.
func DefaultProfile() Profile {
	return Profile{
		Image: DefaultThresholds(detector.SpaceImageNormalized),
		World: DefaultThresholds(detector.SpaceWorldMetric),
	}
}

// ForSpace returns predicates bound to the thresholds for space.
func (p Profile) ForSpace(space detector.CoordinateSpace) Predicates {
	if space.Normalize() == detector.SpaceWorldMetric {
		return Predicates{T: p.World}
	}
	return Predicates{T: p.Image}
}

// ForFrame returns predicates bound to the thresholds matching the frame's
// declared space.
func (p Profile) ForFrame(f detector.HandFrame) Predicates {
	return p.ForSpace(f.Space)
}
