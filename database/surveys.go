package database

import (
	"context"
	"database/sql"

	"github.com/mbolis/survey-builder/model"
	"github.com/pkg/errors"
)

type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectSurvey = `
	SELECT id, version, title, description, is_anonymous, is_active, share_token, created_at
	FROM survey`

func scanSurvey(row *sql.Row) (model.Survey, error) {
	s := model.Survey{}
	var token sql.NullString
	err := row.Scan(&s.ID, &s.Version, &s.Title, &s.Description, &s.IsAnonymous, &s.IsActive, &token, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, errors.Wrap(err, "survey.scan")
	}
	s.ShareToken = token.String
	return s, nil
}

// GetSurvey returns a survey without its questions, or ErrNotFound.
func GetSurvey(ctx context.Context, db RowQuerier, id int) (model.Survey, error) {
	return scanSurvey(db.QueryRowContext(ctx, selectSurvey+` WHERE id = ?`, id))
}

func GetSurveyByToken(ctx context.Context, db RowQuerier, token string) (model.Survey, error) {
	return scanSurvey(db.QueryRowContext(ctx, selectSurvey+` WHERE share_token = ?`, token))
}
