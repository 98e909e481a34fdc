package database

import (
	"context"
	"database/sql"

	"github.com/mbolis/survey-builder/model"
	"github.com/pkg/errors"
)

type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// StoredQuestion is a question together with the row ids needed to record
// answers against it.
type StoredQuestion struct {
	model.Question
	ID        int
	OptionIDs []int
}

// LoadStoredQuestions returns the questions of a survey in list order.
func LoadStoredQuestions(ctx context.Context, db Querier, surveyID int) ([]StoredQuestion, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT q.id, q.text, q.qtype, o.id, o.text
		FROM question q
		LEFT OUTER JOIN question_option o ON (q.id = o.question_id)
		WHERE q.survey_id = ?
		ORDER BY q.order_index, o.order_index`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "questions.select")
	}
	defer rows.Close()

	questions := []StoredQuestion{}
	for rows.Next() {
		var (
			id       int
			text     string
			kind     string
			optionID sql.NullInt64
			option   sql.NullString
		)
		err = rows.Scan(&id, &text, &kind, &optionID, &option)
		if err != nil {
			return nil, errors.Wrap(err, "questions.scan")
		}

		if n := len(questions); n == 0 || questions[n-1].ID != id {
			questions = append(questions, StoredQuestion{
				ID:       id,
				Question: model.Question{Text: text, Kind: model.Kind(kind)},
			})
		}
		if optionID.Valid {
			last := &questions[len(questions)-1]
			last.Options = append(last.Options, option.String)
			last.OptionIDs = append(last.OptionIDs, int(optionID.Int64))
		}
	}

	return questions, errors.Wrap(rows.Err(), "questions.rows")
}

func LoadQuestions(ctx context.Context, db Querier, surveyID int) ([]model.Question, error) {
	stored, err := LoadStoredQuestions(ctx, db, surveyID)
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, len(stored))
	for i, q := range stored {
		questions[i] = q.Question
	}
	return questions, nil
}

// ReplaceQuestions deletes the question list of a survey and stores the
// given one in its place. Options are kept only for choice questions.
func ReplaceQuestions(ctx context.Context, tx *sql.Tx, surveyID int, questions []model.Question) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM question
		WHERE survey_id = ?`,
		surveyID,
	)
	if err != nil {
		return errors.Wrap(err, "questions.delete")
	}

	insertQuestion, err := tx.PrepareContext(ctx, `
		INSERT INTO question (survey_id, text, qtype, order_index)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	if err != nil {
		return errors.Wrap(err, "questions.insert.prepare")
	}
	defer insertQuestion.Close()

	insertOption, err := tx.PrepareContext(ctx, `
		INSERT INTO question_option (question_id, text, order_index)
		VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "questions.options.insert.prepare")
	}
	defer insertOption.Close()

	for i, q := range questions {
		var questionID int
		err = insertQuestion.QueryRowContext(ctx, surveyID, q.Text, string(q.Kind), i).Scan(&questionID)
		if err != nil {
			return errors.Wrapf(err, "questions.insert[%d]", i)
		}

		if !q.Kind.HasOptions() {
			continue
		}
		for j, opt := range q.Options {
			_, err = insertOption.ExecContext(ctx, questionID, opt, j)
			if err != nil {
				return errors.Wrapf(err, "questions.options.insert[%d][%d]", i, j)
			}
		}
	}

	return nil
}
