// Package types contains request and response shapes shared by the API and the app layer.
package types

import (
	"strings"

	"github.com/okian/lookbook/internal/domain/imagematch"
	"github.com/okian/lookbook/internal/domain/model"
)

// Outcome tags the result of a recommendation request.
type Outcome string

// Recommendation outcomes.
const (
	OutcomeOK            Outcome = "ok"
	OutcomeNoLabel       Outcome = "no_label"
	OutcomeUnknownGender Outcome = "unknown_gender"
)

// Label is the attribute set produced by the image label oracle. Empty
// strings stand for attributes the oracle could not infer.
type Label struct {
	Color    string `json:"color"`
	Style    string `json:"style"`
	Category string `json:"category"`
	Part     string `json:"part"`
}

// Complete reports whether the label carries enough to recommend from:
// a color and a recognizable part.
func (l Label) Complete() bool {
	return strings.TrimSpace(l.Color) != "" && model.ParsePart(l.Part).Valid()
}

// Item converts the label into a domain item with surrounding spaces
// removed, matching what Complete checks.
func (l Label) Item() model.Item {
	return model.Item{
		Color:    strings.TrimSpace(l.Color),
		Style:    strings.TrimSpace(l.Style),
		Category: strings.TrimSpace(l.Category),
		Part:     model.ParsePart(l.Part),
	}
}

// LabelRequest asks for recommendations for an already labelled garment.
type LabelRequest struct {
	Gender   string `json:"gender" validate:"required"`
	Color    string `json:"color" validate:"required"`
	Style    string `json:"style"`
	Category string `json:"category"`
	Part     string `json:"part" validate:"required,part"`
	K        int    `json:"k" validate:"omitempty,min=1"`
}

// Label returns the attribute part of the request.
func (r LabelRequest) Label() Label {
	return Label{Color: r.Color, Style: r.Style, Category: r.Category, Part: r.Part}
}

// RecommendationResponse is the body of the recommendation endpoints.
type RecommendationResponse struct {
	RequestID       string                 `json:"request_id,omitempty"`
	Outcome         Outcome                `json:"outcome"`
	Gender          string                 `json:"gender"`
	InputLabel      Label                  `json:"input_label"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

// ImageResponse is the body of the image resolution endpoint.
type ImageResponse struct {
	URL      string          `json:"url"`
	Filename string          `json:"filename"`
	Tier     imagematch.Tier `json:"tier"`
}

// Stats summarizes what the service has loaded and served.
type Stats struct {
	Ready             bool             `json:"ready"`
	Genders           []string         `json:"genders"`
	PairsByGender     map[string]int   `json:"pairs_by_gender"`
	ImageIndexRows    int              `json:"image_index_rows"`
	RequestsServed    int64            `json:"requests_served"`
	RequestsByOutcome map[string]int64 `json:"requests_by_outcome"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
