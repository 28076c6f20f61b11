package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/makeasinger/fretboard/internal/client"
	"github.com/makeasinger/fretboard/internal/model"
	"github.com/makeasinger/fretboard/internal/render"
)

// ExportTTL is how long signed export links stay valid.
const ExportTTL = 24 * time.Hour

// ExportService renders diagrams to files and stores them
type ExportService struct {
	diagrams *DiagramService
	storage  client.StorageClient
}

// NewExportService creates a new export service
func NewExportService(diagrams *DiagramService, storage client.StorageClient) *ExportService {
	return &ExportService{
		diagrams: diagrams,
		storage:  storage,
	}
}

// ExportDiagram renders one diagram and uploads it
func (s *ExportService) ExportDiagram(ctx context.Context, req *model.ExportDiagramRequest) (*model.ExportDiagramResponse, error) {
	format, err := render.ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}

	sheet, err := s.diagrams.Sheet(&req.DiagramRequest)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, format, sheet); err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	url, expiresAt, err := storeExport(ctx, s.storage, "exports", format, buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &model.ExportDiagramResponse{
		FileURL:   url,
		Size:      int64(buf.Len()),
		Format:    model.Format(format),
		Title:     sheet.Title(),
		ExpiresAt: expiresAt,
	}, nil
}

// RenderRaw renders a diagram without storing it
func (s *ExportService) RenderRaw(req *model.RawDiagramRequest) ([]byte, render.Format, error) {
	format, err := render.ParseFormat(string(req.Format))
	if err != nil {
		return nil, "", err
	}
	sheet, err := s.diagrams.Sheet(&req.DiagramRequest)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, format, sheet); err != nil {
		return nil, "", fmt.Errorf("render failed: %w", err)
	}
	return buf.Bytes(), format, nil
}

// storeExport uploads data and returns a time-limited link to it.
func storeExport(ctx context.Context, storage client.StorageClient, prefix string, format render.Format, data []byte) (string, time.Time, error) {
	key := client.ExportKey(prefix, uuid.New().String(), format.Extension())
	if _, err := storage.Upload(ctx, key, bytes.NewReader(data), format.ContentType()); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	url, err := storage.GetSignedURL(ctx, key, ExportTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return url, time.Now().Add(ExportTTL), nil
}
