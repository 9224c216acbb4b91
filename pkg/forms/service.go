package forms

import (
	"context"

	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/carelab-io/recordforms/pkg/observability/metrics"
	"github.com/carelab-io/recordforms/pkg/schema"
)

type Service struct {
	reader   *schema.Reader
	renderer *Renderer
}

func NewService(reader *schema.Reader, renderer *Renderer) *Service {
	return &Service{reader: reader, renderer: renderer}
}

// RenderTableForm reads the table's schema and renders an edit form for it,
// pre-filled with the supplied record values.
func (s *Service) RenderTableForm(ctx context.Context, table string, req models.RenderFormRequest) (models.RenderFormResponse, error) {
	cols, err := s.reader.Read(ctx, table, req.Options.SortOrder)
	if err != nil {
		return models.RenderFormResponse{}, err
	}

	values := RemoveNull(FromMap(req.Values))
	html, err := s.renderer.RenderForm(ctx, cols, values, req.Options)
	if err != nil {
		return models.RenderFormResponse{}, err
	}

	metrics.FormRendered()
	return models.RenderFormResponse{Table: table, HTML: html}, nil
}

func (s *Service) TableColumns(ctx context.Context, table string, sortOrder map[string]int) ([]schema.Column, error) {
	return s.reader.Read(ctx, table, sortOrder)
}
