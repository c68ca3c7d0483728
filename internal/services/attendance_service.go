package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/dates"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/records"
	"sheetdesk/internal/sheets"
)

type AttendanceService interface {
	View(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.AttendanceView, error)
}

type attendanceService struct {
	src    sheets.Source
	office string
	site   string
	log    zerolog.Logger
}

func NewAttendanceService(src sheets.Source, officeSheet, siteSheet string) AttendanceService {
	return &attendanceService{src: src, office: officeSheet, site: siteSheet, log: logging.Component("attendance")}
}

// View loads both tabs in parallel. A tab that fails to load comes back empty
// with its error text; the other tab is unaffected.
func (s *attendanceService) View(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.AttendanceView, error) {
	var (
		office, site       []records.Record
		officeErr, siteErr error
		g                  errgroup.Group
	)
	g.Go(func() error {
		office, officeErr = s.load(ctx, s.office, "office", sess)
		return nil
	})
	g.Go(func() error {
		site, siteErr = s.load(ctx, s.site, "site", sess)
		return nil
	})
	_ = g.Wait()

	view := &models.AttendanceView{Months: attendanceMonths(office, site)}
	if officeErr != nil {
		view.OfficeError = officeErr.Error()
	}
	if siteErr != nil {
		view.SiteError = siteErr.Error()
	}

	rq := records.Query{
		Text:        q.Search,
		FieldEquals: records.FieldMatch{Field: models.FieldMonthName, Value: q.Month},
	}
	view.Office = records.Filter(office, rq)
	view.Site = records.Filter(site, rq)
	view.OfficeCount = len(view.Office)
	view.SiteCount = len(view.Site)
	return view, nil
}

func (s *attendanceService) load(ctx context.Context, sheet, kind string, sess authz.Session) ([]records.Record, error) {
	rs, err := fetchRecords(ctx, s.src, sheet, models.AttendanceLayout, nil, 0, func(r sheets.DataRow) string {
		code := r.Row.At(0).Display()
		if code == "" {
			return fmt.Sprintf("%s_row_%d_%s", kind, r.Index, shortUUID())
		}
		return fmt.Sprintf("%s_%s_%d", kind, code, r.Index)
	})
	if err != nil {
		s.log.Error().Err(err).Str("sheet", sheet).Msg("[attendance][fetch][err]")
		return nil, err
	}
	for _, r := range rs {
		for _, f := range models.AttendanceClockFields {
			r.Fields[f] = dates.Clock(r.Fields[f])
		}
	}
	return records.VisibleTo(rs, sess, models.FieldName), nil
}

func attendanceMonths(parts ...[]records.Record) []string {
	seen := map[string]struct{}{}
	for _, p := range parts {
		for _, m := range records.Distinct(p, models.FieldMonthName) {
			seen[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
