package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/feedback-service/internal/api/dto"
	"github.com/spec-kit/feedback-service/internal/service"
)

// EstablishmentHandler exposes read-only establishment lookups.
type EstablishmentHandler struct {
	establishments *service.EstablishmentService
}

func NewEstablishmentHandler(establishmentService *service.EstablishmentService) *EstablishmentHandler {
	return &EstablishmentHandler{establishments: establishmentService}
}

// Get handles GET /api/v1/establishments/:id.
func (h *EstablishmentHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return err
	}
	establishment, err := h.establishments.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEstablishmentResponse(*establishment)})
}

// ListByType handles GET /api/v1/establishments?type=T.
func (h *EstablishmentHandler) ListByType(c *fiber.Ctx) error {
	items, err := h.establishments.FindByType(c.UserContext(), c.Query("type"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEstablishmentResponses(items)})
}
