// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	service "github.com/okian/lookbook/internal/app"
	"github.com/okian/lookbook/internal/domain/types"
	"github.com/okian/lookbook/internal/validation"
	"github.com/okian/lookbook/pkg/logger"
)

// RecommendationsHandler serves the recommendation endpoints.
type RecommendationsHandler struct {
	deps           Dependencies
	maxUploadBytes int64
	logger         logger.Logger
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps Dependencies, maxUploadBytes int64, l logger.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps, maxUploadBytes: maxUploadBytes, logger: l}
}

// HandlePostImage handles POST /recommendations: a multipart form with
// gender, image and an optional k.
func (h *RecommendationsHandler) HandlePostImage(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_recommendations"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !h.deps.Ready() {
		writeError(w, r, http.StatusServiceUnavailable, "not_ready", NewKind(op, ErrNotReady))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrPayloadTooBig, err))
			return
		}
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	gender := strings.TrimSpace(r.FormValue("gender"))
	if gender == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing gender")))
		return
	}
	k, err := parseK(r.FormValue("k"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	file, hdr, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("missing image: %w", err)))
		return
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid image file")))
		return
	}

	res, err := h.deps.RecommendImage(r.Context(), image, hdr.Filename, gender, k)
	h.respond(w, r, op, res, err)
}

// HandlePostLabels handles POST /recommendations/labels for callers that
// already know the garment's attributes.
func (h *RecommendationsHandler) HandlePostLabels(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_recommendations_labels"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !h.deps.Ready() {
		writeError(w, r, http.StatusServiceUnavailable, "not_ready", NewKind(op, ErrNotReady))
		return
	}

	var req types.LabelRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes)).DecodeContext(r.Context(), &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.RecommendLabel(r.Context(), req.Label(), req.Gender, req.K)
	h.respond(w, r, op, res, err)
}

func (h *RecommendationsHandler) respond(w http.ResponseWriter, r *http.Request, op string, res service.Result, err error) {
	if errors.Is(err, service.ErrNotReady) {
		writeError(w, r, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err))
		return
	}
	if errors.Is(err, service.ErrNoLabeler) {
		writeError(w, r, http.StatusServiceUnavailable, "no_labeler", WrapKind(op, ErrNotReady, err))
		return
	}
	if err != nil {
		h.logger.Error(r.Context(), "recommendation failed",
			logger.String("op", op),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal", nil)
		return
	}

	status := http.StatusOK
	if res.Outcome == types.OutcomeUnknownGender {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, types.RecommendationResponse{
		RequestID:       RequestIDFrom(r.Context()),
		Outcome:         res.Outcome,
		Gender:          res.Gender,
		InputLabel:      res.Label,
		Recommendations: res.Recommendations,
	})
}

// parseK reads an optional positive k; empty means "use the default".
func parseK(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 {
		return 0, fmt.Errorf("invalid k %q; must be a positive integer", raw)
	}
	return k, nil
}
