package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/feedback-service/internal/api/dto"
	"github.com/spec-kit/feedback-service/internal/service"
	apperrors "github.com/spec-kit/feedback-service/pkg/util/errorutil"
)

// FeedbackHandler exposes feedback endpoints.
type FeedbackHandler struct {
	feedback *service.FeedbackService
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedbackService}
}

// Create handles POST /api/v1/feedback.
func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	view, err := h.feedback.CreateFeedback(c.UserContext(), service.FeedbackCreateInput{
		EstablishmentID: req.EstablishmentID,
		Title:           req.Title,
		TextComment:     req.TextComment,
		Score:           *req.Score,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": view})
}

// List handles GET /api/v1/feedback?establishmentId=N.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	establishmentID, err := parseID(c.Query("establishmentId"), "establishmentId")
	if err != nil {
		return err
	}

	items, err := h.feedback.ListFeedback(c.UserContext(), establishmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Delete handles DELETE /api/v1/feedback/:id.
func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	feedbackID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return err
	}

	if err := h.feedback.DeleteFeedback(c.UserContext(), feedbackID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(field+" must be a positive integer", map[string]any{field: raw})
	}
	return id, nil
}
