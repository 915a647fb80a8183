package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ideas-service/internal/api/dto"
	"github.com/spec-kit/ideas-service/internal/auth"
	"github.com/spec-kit/ideas-service/internal/service"
	apperrors "github.com/spec-kit/ideas-service/pkg/util/errorutil"
)

// IdeasHandler exposes idea CRUD.
type IdeasHandler struct {
	ideas *service.IdeaService
}

// NewIdeasHandler constructs handler.
func NewIdeasHandler(ideas *service.IdeaService) *IdeasHandler {
	return &IdeasHandler{ideas: ideas}
}

// List handles GET /api/ideas?_limit=N.
func (h *IdeasHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("_limit", 0)
	if limit < 0 {
		limit = 0
	}
	ideas, err := h.ideas.List(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIdeaListResponse(ideas))
}

// Get handles GET /api/ideas/:id.
func (h *IdeasHandler) Get(c *fiber.Ctx) error {
	idea, err := h.ideas.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIdeaResponse(idea))
}

// Create handles POST /api/ideas.
func (h *IdeasHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.MsgNoToken)
	}
	req, err := parseIdeaRequest(c)
	if err != nil {
		return err
	}

	idea, err := h.ideas.Create(c.UserContext(), user.ID, req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.IdeaMutationResponse{
		Message: "idea created successfully",
		Idea:    dto.NewIdeaResponse(idea),
	})
}

// Update handles PUT /api/ideas/:id.
func (h *IdeasHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.MsgNoToken)
	}
	req, err := parseIdeaRequest(c)
	if err != nil {
		return err
	}

	idea, err := h.ideas.Update(c.UserContext(), user.ID, c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.JSON(dto.IdeaMutationResponse{
		Message: "idea updated successfully",
		Idea:    dto.NewIdeaResponse(idea),
	})
}

// Delete handles DELETE /api/ideas/:id.
func (h *IdeasHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.MsgNoToken)
	}
	if err := h.ideas.Delete(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "idea deleted successfully"})
}

// History handles GET /api/ideas/:id/history.
func (h *IdeasHandler) History(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.MsgNoToken)
	}
	entries, err := h.ideas.History(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIdeaHistoryResponse(entries))
}

func parseIdeaRequest(c *fiber.Ctx) (*dto.IdeaRequest, error) {
	var req dto.IdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
