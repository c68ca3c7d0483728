package services

import (
	"context"

	"github.com/rs/zerolog"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/records"
	"sheetdesk/internal/sheets"
)

type QuickTaskService interface {
	View(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.ListView, error)
}

type quickTaskService struct {
	src   sheets.Source
	sheet string
	log   zerolog.Logger
}

func NewQuickTaskService(src sheets.Source, sheet string) QuickTaskService {
	return &quickTaskService{src: src, sheet: sheet, log: logging.Component("quicktask")}
}

func (s *quickTaskService) View(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.ListView, error) {
	rs, err := fetchRecords(ctx, s.src, s.sheet, models.QuickTaskLayout, models.QuickTaskDateFields, 0, nil)
	if err != nil {
		s.log.Error().Err(err).Str("sheet", s.sheet).Msg("[quicktask][fetch][err]")
		return nil, err
	}
	visible := records.VisibleTo(rs, sess, models.FieldName)
	filtered := records.Filter(visible, pageQuery(q, models.FieldDate))
	return &models.ListView{Records: filtered, Total: len(visible), Filtered: len(filtered)}, nil
}
