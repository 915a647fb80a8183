package dto

import (
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/spec-kit/ideas-service/internal/domain"
	"github.com/spec-kit/ideas-service/internal/service"
)

// IdeaRequest payload for creating or replacing an idea. Tags may be a
// comma separated string or an array of strings.
type IdeaRequest struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Tags        any    `json:"tags"`
}

var tagsShape = validation.By(func(value interface{}) error {
	switch v := value.(type) {
	case nil, string:
		return nil
	case []any:
		for _, item := range v {
			if _, ok := item.(string); !ok {
				return validation.NewError("validation_tags_item", "tags must be strings")
			}
		}
		return nil
	default:
		return validation.NewError("validation_tags_type", "must be a string or an array of strings")
	}
})

// Normalize trims the text fields.
func (r *IdeaRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Summary = strings.TrimSpace(r.Summary)
	r.Description = strings.TrimSpace(r.Description)
}

// Validate checks required fields and the tags shape.
func (r *IdeaRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required.Error("title is required")),
		validation.Field(&r.Summary, validation.Required.Error("summary is required")),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
		validation.Field(&r.Tags, tagsShape),
	)
	return wrapValidationError(err)
}

// Input converts the request for the idea service.
func (r *IdeaRequest) Input() service.IdeaInput {
	return service.IdeaInput{
		Title:       r.Title,
		Summary:     r.Summary,
		Description: r.Description,
		Tags:        ParseTags(r.Tags),
	}
}

// ParseTags accepts a comma separated string or a list of strings, trims each
// tag and drops empty ones. The result is never nil.
func ParseTags(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}

	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// IdeaResponse is the public representation of an idea.
type IdeaResponse struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewIdeaResponse maps a domain idea.
func NewIdeaResponse(idea *domain.Idea) IdeaResponse {
	tags := idea.Tags
	if tags == nil {
		tags = []string{}
	}
	return IdeaResponse{
		ID:          idea.ID,
		User:        idea.UserID,
		Title:       idea.Title,
		Summary:     idea.Summary,
		Description: idea.Description,
		Tags:        tags,
		CreatedAt:   idea.CreatedAt,
		UpdatedAt:   idea.UpdatedAt,
	}
}

// NewIdeaListResponse maps a slice of ideas.
func NewIdeaListResponse(ideas []domain.Idea) []IdeaResponse {
	out := make([]IdeaResponse, 0, len(ideas))
	for i := range ideas {
		out = append(out, NewIdeaResponse(&ideas[i]))
	}
	return out
}

// IdeaHistoryResponse is one entry of an idea's change trail.
type IdeaHistoryResponse struct {
	ID         string    `json:"id"`
	Idea       string    `json:"idea"`
	User       string    `json:"user"`
	ChangeType string    `json:"changeType"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewIdeaHistoryResponse maps a change trail.
func NewIdeaHistoryResponse(entries []domain.IdeaHistory) []IdeaHistoryResponse {
	out := make([]IdeaHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, IdeaHistoryResponse{
			ID:         e.ID,
			Idea:       e.IdeaID,
			User:       e.UserID,
			ChangeType: e.ChangeType,
			Title:      e.Title,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

// IdeaMutationResponse confirms a create or update.
type IdeaMutationResponse struct {
	Message string       `json:"message"`
	Idea    IdeaResponse `json:"idea"`
}
