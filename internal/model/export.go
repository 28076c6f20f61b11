package model

import "time"

// ExportDiagramRequest represents the request to export a diagram file
type ExportDiagramRequest struct {
	DiagramRequest
	Format Format `json:"format" validate:"omitempty,oneof=json msgpack txt"`
}

// ExportDiagramResponse represents the response for a diagram export
type ExportDiagramResponse struct {
	FileURL   string    `json:"fileUrl"`
	Size      int64     `json:"size"`
	Format    Format    `json:"format"`
	Title     string    `json:"title"`
	ExpiresAt time.Time `json:"expiresAt"`
}
