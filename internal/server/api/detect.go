package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/unmute/internal/app"
	"github.com/ayusman/unmute/internal/detector"
	"github.com/ayusman/unmute/internal/sign"
)

// maxImageBytes bounds uploaded images.
const maxImageBytes = 10 << 20

// DetectHandler runs the hand detector on an uploaded image.
type DetectHandler struct {
	app *app.App
}

// NewDetectHandler creates a new DetectHandler.
func NewDetectHandler(a *app.App) *DetectHandler {
	return &DetectHandler{app: a}
}

type detectedHand struct {
	detector.Hand
	Result *sign.Result `json:"result"`
}

type detectResponse struct {
	Hands     []detectedHand `json:"hands"`
	Submitted bool           `json:"submitted"`
}

// ServeHTTP handles POST /api/detect. The body is an encoded image (JPEG or
// PNG). With ?submit=1 the hands are also fed to the pipeline.
func (h *DetectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Image body is required")
		return
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || img.Empty() {
		if err == nil {
			img.Close()
		}
		writeError(w, http.StatusBadRequest, "Could not decode image")
		return
	}
	defer img.Close()

	hands, err := h.app.DetectImage(&img)
	if err != nil {
		if errors.Is(err, app.ErrNoDetector) {
			writeError(w, http.StatusServiceUnavailable, "Hand detection unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "Detection failed")
		return
	}

	resp := detectResponse{Hands: make([]detectedHand, 0, len(hands))}
	for _, hand := range hands {
		dh := detectedHand{Hand: hand}
		if res, ok := h.app.Classifier().ClassifyHand(hand); ok {
			dh.Result = &res
		}
		resp.Hands = append(resp.Hands, dh)
	}

	if r.URL.Query().Get("submit") == "1" {
		h.app.Submit(app.Observation{Hands: hands, Timestamp: time.Now()})
		resp.Submitted = true
	}

	writeJSON(w, http.StatusOK, resp)
}
