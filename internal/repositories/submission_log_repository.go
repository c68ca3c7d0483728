package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sheetdesk/internal/models"
)

type SubmissionLogRepository interface {
	Store(ctx context.Context, entry *models.SubmissionLog) error
	List(ctx context.Context, filter models.SubmissionLogFilter) ([]models.SubmissionLog, error)
}

type submissionLogRepository struct {
	db *sql.DB
}

func NewSubmissionLogRepository(db *sql.DB) SubmissionLogRepository {
	return &submissionLogRepository{db: db}
}

func (r *submissionLogRepository) Store(ctx context.Context, e *models.SubmissionLog) error {
	const q = `
		INSERT INTO submission_log (sheet, username, row_count, status, error)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		e.Sheet, e.Username, e.RowCount, e.Status, e.Error,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *submissionLogRepository) List(ctx context.Context, filter models.SubmissionLogFilter) ([]models.SubmissionLog, error) {
	query := `SELECT id, sheet, username, row_count, status, error, created_at FROM submission_log`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.Sheet != nil {
		conditions = append(conditions, fmt.Sprintf("sheet = $%d", argID))
		args = append(args, *filter.Sheet)
		argID++
	}
	if filter.Username != nil {
		conditions = append(conditions, fmt.Sprintf("lower(username) = lower($%d)", argID))
		args = append(args, *filter.Username)
		argID++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argID)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SubmissionLog
	for rows.Next() {
		var e models.SubmissionLog
		var errText sql.NullString
		if err := rows.Scan(&e.ID, &e.Sheet, &e.Username, &e.RowCount, &e.Status, &errText, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Error = errText.String
		out = append(out, e)
	}
	return out, rows.Err()
}
