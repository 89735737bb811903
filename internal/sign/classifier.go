// Package sign classifies a single hand observation into at most one sign.
package sign

import (
	"github.com/ayusman/unmute/internal/detector"
	"github.com/ayusman/unmute/internal/geometry"
)

// Result is one classified sign.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Custom     bool    `json:"custom,omitempty"`
}

// Options configures a Classifier.
type Options struct {
	Thresholds geometry.Profile
	Rules      []Rule
	Custom     []Rule
}

// DefaultOptions returns the default thresholds and rule lists.
func DefaultOptions() Options {
	return Options{
		Thresholds: geometry.DefaultProfile(),
		Rules:      DefaultRules(),
		Custom:     CustomRules(),
	}
}

// Classifier evaluates the base rule list and the custom overlay.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	opts Options
}

// New creates a classifier. Nil rule lists fall back to the defaults.
func New(opts Options) *Classifier {
	if opts.Rules == nil {
		opts.Rules = DefaultRules()
	}
	if opts.Custom == nil {
		opts.Custom = CustomRules()
	}
	return &Classifier{opts: opts}
}

// Thresholds returns the profile the classifier was built with.
func (c *Classifier) Thresholds() geometry.Profile {
	return c.opts.Thresholds
}

// Classify returns the sign for one observation, or false when nothing
// matches or neither frame is well formed. Base rules read the image frame
// (the world frame if the image frame is partial); the overlay reads the
// world frame whenever it is valid. An empty handedness falls back to the
// frame's own tag.
func (c *Classifier) Classify(image detector.HandFrame, world *detector.HandFrame, handedness string) (Result, bool) {
	base, overlay, ok := c.frames(image, world, handedness)
	if !ok {
		return Result{}, false
	}

	if r, ok := c.first(c.opts.Custom, overlay); ok {
		r.Custom = true
		return r, true
	}
	return c.first(c.opts.Rules, base)
}

// ClassifyHand is Classify for a detector.Hand.
func (c *Classifier) ClassifyHand(h detector.Hand) (Result, bool) {
	return c.Classify(h.Image, h.World, h.Image.Handedness)
}

// Explanation lists every rule that matched an observation, in list order.
type Explanation struct {
	Result      *Result  `json:"result"`
	BaseSpace   string   `json:"base_space"`
	Base        []string `json:"base"`
	CustomSpace string   `json:"custom_space"`
	Custom      []string `json:"custom"`
}

// Explain evaluates every rule instead of stopping at the first match.
func (c *Classifier) Explain(image detector.HandFrame, world *detector.HandFrame, handedness string) Explanation {
	exp := Explanation{Base: []string{}, Custom: []string{}}

	base, overlay, ok := c.frames(image, world, handedness)
	if !ok {
		return exp
	}
	exp.BaseSpace = string(base.Space.Normalize())
	exp.CustomSpace = string(overlay.Space.Normalize())
	exp.Base = c.all(c.opts.Rules, base)
	exp.Custom = c.all(c.opts.Custom, overlay)

	if r, ok := c.Classify(image, world, handedness); ok {
		exp.Result = &r
	}
	return exp
}

// frames picks and orients the frames for the base list and the overlay.
func (c *Classifier) frames(image detector.HandFrame, world *detector.HandFrame, handedness string) (base, overlay detector.HandFrame, ok bool) {
	// The world frame is metric by definition, whatever its tag says.
	var metric detector.HandFrame
	worldOK := world != nil && world.Valid()
	if worldOK {
		metric = *world
		metric.Space = detector.SpaceWorldMetric
	}

	switch {
	case image.Valid():
		base = image
	case worldOK:
		base = metric
	default:
		return base, overlay, false
	}

	overlay = base
	if worldOK {
		overlay = metric
	}

	if handedness == "" {
		handedness = base.Handedness
	}
	if handedness == detector.HandLeft {
		base = base.Mirror()
		overlay = overlay.Mirror()
	}
	return base, overlay, true
}

func (c *Classifier) first(rules []Rule, f detector.HandFrame) (Result, bool) {
	p := c.opts.Thresholds.ForFrame(f)
	for _, r := range rules {
		if r.Match(p, f) {
			return Result{Label: r.Label, Confidence: r.Confidence}, true
		}
	}
	return Result{}, false
}

func (c *Classifier) all(rules []Rule, f detector.HandFrame) []string {
	p := c.opts.Thresholds.ForFrame(f)
	matched := []string{}
	for _, r := range rules {
		if r.Match(p, f) {
			matched = append(matched, r.Label)
		}
	}
	return matched
}
