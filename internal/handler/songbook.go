package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/makeasinger/fretboard/internal/middleware"
	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/service"
	"github.com/makeasinger/fretboard/pkg/response"
)

type SongbookHandler struct {
	service   *service.SongbookService
	validator *validator.Validate
}

func NewSongbookHandler(svc *service.SongbookService, v *validator.Validate) *SongbookHandler {
	return &SongbookHandler{
		service:   svc,
		validator: v,
	}
}

// Start handles POST /api/songbook/start
func (h *SongbookHandler) Start(c *fiber.Ctx) error {
	var req model.SongbookStartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.StartSongbook(c.UserContext(), middleware.GetUserID(c), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Accepted(c, result)
}

// Status handles GET /api/songbook/status/:jobId
func (h *SongbookHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(c.UserContext(), middleware.GetUserID(c), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Result handles GET /api/songbook/result/:jobId
func (h *SongbookHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetResult(c.UserContext(), middleware.GetUserID(c), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Cancel handles POST /api/songbook/cancel/:jobId
func (h *SongbookHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.CancelSongbook(c.UserContext(), middleware.GetUserID(c), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Watch guards GET /ws/jobs/:jobId: only the job's owner may subscribe.
func (h *SongbookHandler) Watch(c *fiber.Ctx) error {
	if _, err := h.service.GetStatus(c.UserContext(), middleware.GetUserID(c), c.Params("jobId")); err != nil {
		return serviceError(c, err)
	}
	return c.Next()
}
