package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/pdf"
	"sheetdesk/internal/records"
	"sheetdesk/internal/sheets"
)

type ScoreService interface {
	View(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.ListView, error)
	Report(ctx context.Context, sess authz.Session, q models.PageQuery) (string, error)
}

type scoreService struct {
	src   sheets.Source
	sheet string
	pdf   pdf.Generator
	log   zerolog.Logger
}

func NewScoreService(src sheets.Source, sheet string, gen pdf.Generator) ScoreService {
	return &scoreService{src: src, sheet: sheet, pdf: gen, log: logging.Component("score")}
}

func (s *scoreService) View(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.ListView, error) {
	rs, err := fetchRecords(ctx, s.src, s.sheet, models.ScoreLayout, nil, models.ScoreFirstDataRow, nil)
	if err != nil {
		s.log.Error().Err(err).Str("sheet", s.sheet).Msg("[score][fetch][err]")
		return nil, err
	}
	normalizeDates(rs, models.FieldStartDate, models.FieldEndDate)
	visible := records.VisibleTo(rs, sess, models.FieldName)
	filtered := records.Filter(visible, records.Query{Text: q.Search})
	return &models.ListView{Records: filtered, Total: len(visible), Filtered: len(filtered)}, nil
}

func (s *scoreService) Report(ctx context.Context, sess authz.Session, q models.PageQuery) (string, error) {
	view, err := s.View(ctx, sess, q)
	if err != nil {
		return "", err
	}
	rows := make([][]string, 0, len(view.Records))
	for _, r := range view.Records {
		row := make([]string, len(models.ScoreLayout))
		for i, f := range models.ScoreLayout {
			row[i] = r.Get(f)
		}
		rows = append(rows, row)
	}
	return s.pdf.GenerateScoreReport(pdf.ScoreReport{
		GeneratedAt: time.Now(),
		Viewer:      sess.Username,
		Headers:     []string{"Start Date", "End Date", "Name", "Target", "Achievement", "Work Not Done", "Not On Time", "Total Pending"},
		Rows:        rows,
	})
}
