package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/ideas-service/pkg/util/errorutil"
)

func validationDetails(t *testing.T, err error) map[string]any {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
	return de.Details
}

func TestRegisterRequest(t *testing.T) {
	req := RegisterRequest{Name: "  Ada ", Email: " ADA@Example.com ", Password: "pw"}
	req.Normalize()
	assert.Equal(t, "Ada", req.Name)
	assert.Equal(t, "ada@example.com", req.Email)
	assert.NoError(t, req.Validate())

	blank := RegisterRequest{Name: "   ", Email: "", Password: "   "}
	blank.Normalize()
	details := validationDetails(t, blank.Validate())
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestLoginRequest(t *testing.T) {
	req := LoginRequest{Email: "Ada@Example.com"}
	req.Normalize()
	assert.Equal(t, "ada@example.com", req.Email)

	details := validationDetails(t, req.Validate())
	assert.Contains(t, details, "password")
	assert.NotContains(t, details, "email")
}

func TestParseTags(t *testing.T) {
	cases := map[string]struct {
		raw  any
		want []string
	}{
		"nil":          {raw: nil, want: []string{}},
		"comma string": {raw: " go, web ,,api ", want: []string{"go", "web", "api"}},
		"empty string": {raw: "", want: []string{}},
		"array":        {raw: []any{" go ", "", "web"}, want: []string{"go", "web"}},
		"string slice": {raw: []string{"a", " "}, want: []string{"a"}},
		"unsupported":  {raw: 42.0, want: []string{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseTags(tc.raw))
		})
	}
}

func TestIdeaRequest_FromJSON(t *testing.T) {
	var req IdeaRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":" T ","summary":"S","description":"D","tags":["x"," y "]}`), &req))
	req.Normalize()
	require.NoError(t, req.Validate())

	in := req.Input()
	assert.Equal(t, "T", in.Title)
	assert.Equal(t, []string{"x", "y"}, in.Tags)
}

func TestIdeaRequest_Invalid(t *testing.T) {
	req := IdeaRequest{Title: "  ", Tags: 3.0}
	req.Normalize()
	details := validationDetails(t, req.Validate())
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "summary")
	assert.Contains(t, details, "description")
	assert.Contains(t, details, "tags")

	mixed := IdeaRequest{Title: "t", Summary: "s", Description: "d", Tags: []any{"ok", 1.0}}
	details = validationDetails(t, mixed.Validate())
	assert.Contains(t, details, "tags")
}
