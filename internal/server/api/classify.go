package api

import (
	"net/http"

	"github.com/ayusman/unmute/internal/detector"
	"github.com/ayusman/unmute/internal/sign"
)

// ClassifyHandler classifies a single landmark set without touching the
// session.
type ClassifyHandler struct {
	classifier *sign.Classifier
}

// NewClassifyHandler creates a new ClassifyHandler.
func NewClassifyHandler(c *sign.Classifier) *ClassifyHandler {
	return &ClassifyHandler{classifier: c}
}

type classifyRequest struct {
	Points     []detector.Point3D       `json:"points"`
	World      []detector.Point3D       `json:"world,omitempty"`
	Handedness string                   `json:"handedness,omitempty"`
	Space      detector.CoordinateSpace `json:"space,omitempty"`
}

type classifyResponse struct {
	Label       string            `json:"label"`
	Confidence  float64           `json:"confidence"`
	Custom      bool              `json:"custom"`
	Explanation *sign.Explanation `json:"explanation,omitempty"`
}

// ServeHTTP handles POST /api/classify. A malformed landmark set yields an
// empty label, not an error; ?explain=1 adds every matching rule.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	image := detector.HandFrame{
		Points:     req.Points,
		Space:      req.Space.Normalize(),
		Handedness: req.Handedness,
	}
	var world *detector.HandFrame
	if len(req.World) > 0 {
		world = &detector.HandFrame{
			Points:     req.World,
			Space:      detector.SpaceWorldMetric,
			Handedness: req.Handedness,
		}
	}

	var resp classifyResponse
	if res, ok := h.classifier.Classify(image, world, req.Handedness); ok {
		resp.Label = res.Label
		resp.Confidence = res.Confidence
		resp.Custom = res.Custom
	}
	if r.URL.Query().Get("explain") == "1" {
		exp := h.classifier.Explain(image, world, req.Handedness)
		resp.Explanation = &exp
	}

	writeJSON(w, http.StatusOK, resp)
}
