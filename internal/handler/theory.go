package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/service"
	"github.com/makeasinger/fretboard/pkg/response"
)

// TheoryHandler serves the public note, tuning and diagram endpoints
type TheoryHandler struct {
	diagrams  *service.DiagramService
	exports   *service.ExportService
	validator *validator.Validate
}

func NewTheoryHandler(diagrams *service.DiagramService, exports *service.ExportService, v *validator.Validate) *TheoryHandler {
	return &TheoryHandler{
		diagrams:  diagrams,
		exports:   exports,
		validator: v,
	}
}

// Tunings handles GET /api/theory/tunings
func (h *TheoryHandler) Tunings(c *fiber.Ctx) error {
	return response.OK(c, h.diagrams.Tunings())
}

// Note handles POST /api/theory/note
func (h *TheoryHandler) Note(c *fiber.Ctx) error {
	var req model.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.diagrams.Note(&req)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Tuning handles POST /api/theory/tuning
func (h *TheoryHandler) Tuning(c *fiber.Ctx) error {
	var req model.TuningRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.diagrams.Tuning(&req)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Diagram handles POST /api/theory/diagram
func (h *TheoryHandler) Diagram(c *fiber.Ctx) error {
	var req model.DiagramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.diagrams.Diagram(&req)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Raw handles POST /api/theory/diagram/raw, answering with the rendered
// export itself instead of a JSON envelope.
func (h *TheoryHandler) Raw(c *fiber.Ctx) error {
	var req model.RawDiagramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	data, format, err := h.exports.RenderRaw(&req)
	if err != nil {
		return serviceError(c, err)
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(data)
}
