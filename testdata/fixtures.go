// Package testdata holds landmark fixtures shared by package and end-to-end tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ayusman/unmute/internal/detector"
)

//go:embed sequences/*.json
var sequencesFS embed.FS

// Poses returns the names of every canonical pose fixture, sorted.
func Poses() []string {
	names := make([]string, 0, len(poses))
	for name := range poses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pose returns a fresh copy of the named right-hand image-space fixture.
func Pose(name string) (detector.HandFrame, error) {
	build, ok := poses[name]
	if !ok {
		return detector.HandFrame{}, fmt.Errorf("unknown pose %q", name)
	}
	return build(), nil
}

// MustPose is Pose for tests that treat a missing fixture as a programming error.
func MustPose(name string) detector.HandFrame {
	f, err := Pose(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Scale multiplies every coordinate of f by k.
func Scale(f detector.HandFrame, k float64) detector.HandFrame {
	out := f
	out.Points = make([]detector.Point3D, len(f.Points))
	for i, p := range f.Points {
		out.Points[i] = detector.Point3D{X: p.X * k, Y: p.Y * k, Z: p.Z * k}
	}
	return out
}

// Truncate returns f with only its first n points, simulating a partial detection.
func Truncate(f detector.HandFrame, n int) detector.HandFrame {
	out := f
	if n > len(f.Points) {
		n = len(f.Points)
	}
	out.Points = append([]detector.Point3D(nil), f.Points[:n]...)
	return out
}

var poses = map[string]func() detector.HandFrame{
	"fist":      detector.FistFrame,
	"pointing":  detector.PointingFrame,
	"open_palm": detector.OpenPalmFrame,
	"thank_you": detector.ThankYouFrame,
	"ily":       detector.ILoveYouFrame,
	"y": func() detector.HandFrame {
		return detector.PoseFrame(detector.ThumbOut, curled, curled, curled, spread)
	},
	"v": func() detector.HandFrame {
		return detector.PoseFrame(detector.ThumbTucked, spread, spread, curled, curled)
	},
	"u": func() detector.HandFrame {
		return detector.PoseFrame(detector.ThumbTucked, together, together, curled, curled)
	},
	"w": func() detector.HandFrame {
		return detector.PoseFrame(detector.ThumbTucked, spread, spread, spread, curled)
	},
	"i": func() detector.HandFrame {
		return detector.PoseFrame(detector.ThumbTucked, curled, curled, curled, spread)
	},
	"l": func() detector.HandFrame {
		return detector.PoseFrame(detector.ThumbHorizontal, spread, curled, curled, curled)
	},
	"r": func() detector.HandFrame {
		f := detector.PoseFrame(detector.ThumbTucked, together, together, curled, curled)
		f.Points[detector.IndexDIP] = pt(0.52, 0.41, 0)
		f.Points[detector.IndexTip] = pt(0.48, 0.33, 0)
		f.Points[detector.MiddleTip] = pt(0.55, 0.32, 0)
		return f
	},
	"d": func() detector.HandFrame {
		f := detector.PointingFrame()
		f.Points[detector.ThumbTip] = pt(0.52, 0.64, -0.03)
		return f
	},
	"k": func() detector.HandFrame {
		f := detector.PoseFrame(detector.ThumbTucked, spread, spread, curled, curled)
		setThumb(f, pt(0.58, 0.85, 0), pt(0.62, 0.75, 0), pt(0.59, 0.6, 0), pt(0.54, 0.5, 0))
		return f
	},
	"t": func() detector.HandFrame {
		f := detector.FistFrame()
		setThumb(f, pt(0.57, 0.86, 0), pt(0.61, 0.81, -0.01), pt(0.62, 0.7, -0.02), pt(0.59, 0.68, -0.05))
		setFinger(f, detector.IndexPIP, pt(0.6, 0.66, -0.05), pt(0.58, 0.7, -0.05), pt(0.56, 0.68, -0.04))
		return f
	},
	"e": func() detector.HandFrame {
		f := detector.FistFrame()
		setThumb(f, pt(0.57, 0.86, 0), pt(0.61, 0.81, -0.01), pt(0.58, 0.74, -0.02), pt(0.52, 0.68, -0.03))
		return f
	},
	"x": func() detector.HandFrame {
		f := detector.FistFrame()
		setFinger(f, detector.IndexPIP, pt(0.6, 0.47, 0), pt(0.62, 0.41, 0), pt(0.64, 0.44, 0))
		return f
	},
	"o": func() detector.HandFrame {
		f := detector.OpenPalmFrame()
		setThumb(f, pt(0.58, 0.85, 0), pt(0.65, 0.76, 0), pt(0.66, 0.64, 0), pt(0.62, 0.53, 0))
		setFinger(f, detector.IndexPIP, pt(0.64, 0.5, 0), pt(0.65, 0.46, 0), pt(0.62, 0.51, 0))
		setFinger(f, detector.MiddlePIP, pt(0.53, 0.46, 0), pt(0.56, 0.43, 0), pt(0.58, 0.5, 0))
		setFinger(f, detector.RingPIP, pt(0.45, 0.48, 0), pt(0.49, 0.45, 0), pt(0.53, 0.51, 0))
		setFinger(f, detector.PinkyPIP, pt(0.38, 0.54, 0), pt(0.42, 0.51, 0), pt(0.47, 0.55, 0))
		return f
	},
	"f": func() detector.HandFrame {
		f := detector.OpenPalmFrame()
		setThumb(f, pt(0.58, 0.85, 0), pt(0.65, 0.76, 0), pt(0.66, 0.64, 0), pt(0.63, 0.56, 0))
		setFinger(f, detector.IndexPIP, pt(0.64, 0.5, 0), pt(0.65, 0.47, 0), pt(0.63, 0.54, 0))
		return f
	},
	"c": func() detector.HandFrame {
		f := detector.OpenPalmFrame()
		setThumb(f, pt(0.58, 0.85, 0), pt(0.65, 0.78, -0.02), pt(0.68, 0.7, -0.04), pt(0.68, 0.62, -0.06))
		setFinger(f, detector.IndexPIP, pt(0.6, 0.44, -0.03), pt(0.62, 0.42, -0.06), pt(0.62, 0.45, -0.08))
		setFinger(f, detector.MiddlePIP, pt(0.51, 0.42, -0.03), pt(0.53, 0.4, -0.06), pt(0.54, 0.43, -0.08))
		setFinger(f, detector.RingPIP, pt(0.44, 0.44, -0.03), pt(0.46, 0.42, -0.06), pt(0.47, 0.45, -0.08))
		setFinger(f, detector.PinkyPIP, pt(0.38, 0.46, -0.03), pt(0.4, 0.44, -0.06), pt(0.4, 0.46, -0.09))
		return f
	},
	// H and G are side-on: the hand points across the image.
	"h": func() detector.HandFrame {
		return frame(
			pt(0.4, 0.7, 0),
			pt(0.46, 0.68, 0), pt(0.5, 0.72, 0), pt(0.53, 0.76, 0), pt(0.55, 0.79, 0),
			pt(0.62, 0.62, 0), pt(0.72, 0.62, 0), pt(0.79, 0.62, 0), pt(0.85, 0.62, 0),
			pt(0.62, 0.68, 0), pt(0.73, 0.68, 0), pt(0.8, 0.67, 0), pt(0.86, 0.66, 0),
			pt(0.61, 0.74, 0), pt(0.64, 0.77, 0), pt(0.63, 0.8, 0), pt(0.6, 0.79, 0),
			pt(0.58, 0.78, 0), pt(0.61, 0.81, 0), pt(0.6, 0.83, 0), pt(0.58, 0.82, 0),
		)
	},
	"g": func() detector.HandFrame {
		return frame(
			pt(0.4, 0.7, 0),
			pt(0.46, 0.66, 0), pt(0.52, 0.6, 0), pt(0.6, 0.57, 0), pt(0.68, 0.56, 0),
			pt(0.62, 0.62, 0), pt(0.72, 0.62, 0), pt(0.79, 0.62, 0), pt(0.85, 0.62, 0),
			pt(0.62, 0.68, 0), pt(0.66, 0.71, 0), pt(0.65, 0.74, 0), pt(0.62, 0.73, 0),
			pt(0.61, 0.74, 0), pt(0.64, 0.77, 0), pt(0.63, 0.8, 0), pt(0.6, 0.79, 0),
			pt(0.58, 0.78, 0), pt(0.61, 0.81, 0), pt(0.6, 0.83, 0), pt(0.58, 0.82, 0),
		)
	},
}

const (
	curled   = detector.FingerCurled
	spread   = detector.FingerSpread
	together = detector.FingerTogether
)

func pt(x, y, z float64) detector.Point3D {
	return detector.Point3D{X: x, Y: y, Z: z}
}

func setThumb(f detector.HandFrame, cmc, mcp, ip, tip detector.Point3D) {
	f.Points[detector.ThumbCMC] = cmc
	f.Points[detector.ThumbMCP] = mcp
	f.Points[detector.ThumbIP] = ip
	f.Points[detector.ThumbTip] = tip
}

// setFinger replaces the PIP, DIP and tip following the given PIP index.
func setFinger(f detector.HandFrame, pipIdx int, pip, dip, tip detector.Point3D) {
	f.Points[pipIdx] = pip
	f.Points[pipIdx+1] = dip
	f.Points[pipIdx+2] = tip
}

func frame(points ...detector.Point3D) detector.HandFrame {
	return detector.HandFrame{
		Points:     points,
		Space:      detector.SpaceImageNormalized,
		Handedness: detector.HandRight,
		Score:      0.95,
	}
}

// Sample is one step of a recorded sequence: a pose observed at an offset
// from the start of the recording. An empty pose means no hand in view.
type Sample struct {
	OffsetMS int64  `json:"t_ms"`
	Pose     string `json:"pose"`
	World    bool   `json:"world,omitempty"`
}

// Sequence is a named, single-hand recording of poses over time.
type Sequence struct {
	Name       string   `json:"name"`
	Handedness string   `json:"handedness"`
	Samples    []Sample `json:"samples"`
}

// Frame is one resolved sample of a sequence.
type Frame struct {
	At   time.Time
	Hand *detector.Hand // nil when no hand is in view
}

// LoadSequence loads an embedded sequence by file name without extension.
func LoadSequence(name string) (*Sequence, error) {
	data, err := sequencesFS.ReadFile("sequences/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var seq Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}
	return &seq, nil
}

// Frames resolves the sequence against start, mirroring poses for left hands.
func (s *Sequence) Frames(start time.Time) ([]Frame, error) {
	frames := make([]Frame, 0, len(s.Samples))
	for _, sample := range s.Samples {
		fr := Frame{At: start.Add(time.Duration(sample.OffsetMS) * time.Millisecond)}
		if sample.Pose != "" {
			img, err := Pose(sample.Pose)
			if err != nil {
				return nil, fmt.Errorf("sequence %s: %w", s.Name, err)
			}
			if s.Handedness == detector.HandLeft {
				img = img.Mirror()
			}
			img.Handedness = s.Handedness
			hand := detector.Hand{Image: img}
			if sample.World {
				hand.World = detector.WorldFixture(img)
			}
			fr.Hand = &hand
		}
		frames = append(frames, fr)
	}
	return frames, nil
}
