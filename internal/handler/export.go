package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/service"
	"github.com/makeasinger/fretboard/pkg/response"
)

type ExportHandler struct {
	service   *service.ExportService
	validator *validator.Validate
}

func NewExportHandler(svc *service.ExportService, v *validator.Validate) *ExportHandler {
	return &ExportHandler{
		service:   svc,
		validator: v,
	}
}

// Diagram handles POST /api/export/diagram
func (h *ExportHandler) Diagram(c *fiber.Ctx) error {
	var req model.ExportDiagramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.ExportDiagram(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}
