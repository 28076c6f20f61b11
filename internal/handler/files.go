package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/makeasinger/fretboard/internal/client"
	"github.com/makeasinger/fretboard/pkg/response"
)

// FileHandler serves exports held in memory storage when R2 is not configured.
type FileHandler struct {
	storage *client.MemoryStorage
	now     func() time.Time
}

func NewFileHandler(storage *client.MemoryStorage) *FileHandler {
	return &FileHandler{storage: storage, now: time.Now}
}

// Get handles GET /files/*
func (h *FileHandler) Get(c *fiber.Ctx) error {
	if raw := c.Query("expires"); raw != "" {
		expires, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return response.ValidationError(c, "Invalid expires parameter", nil)
		}
		if h.now().Unix() >= expires {
			return response.NotFound(c, "File not found")
		}
	}

	obj, ok := h.storage.Get(c.Params("*"))
	if !ok {
		return response.NotFound(c, "File not found")
	}
	c.Set(fiber.HeaderContentType, obj.ContentType)
	return c.Send(obj.Data)
}
