// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/okian/lookbook/internal/domain/types"
)

// ImagesHandler serves photo lookups.
type ImagesHandler struct {
	deps Dependencies
}

// NewImagesHandler creates a new images handler.
func NewImagesHandler(deps Dependencies) *ImagesHandler {
	return &ImagesHandler{deps: deps}
}

// HandleResolve handles GET /images/resolve?gender=&color=&style=&category=.
func (h *ImagesHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	const op = "api.resolve_image"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	q := r.URL.Query()
	gender := q.Get("gender")
	if gender == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing gender")))
		return
	}

	m, ok, err := h.deps.ResolveImage(gender, q.Get("color"), q.Get("style"), q.Get("category"))
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err))
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "not_found", NewKind(op, ErrNoImage))
		return
	}
	writeJSON(w, http.StatusOK, types.ImageResponse{URL: m.URL, Filename: m.Filename, Tier: m.Tier})
}
