package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/mbolis/survey-builder/model"
	"github.com/pkg/errors"
)

// AnswerRow is one stored answer: a text for free text questions, or one
// chosen option.
type AnswerRow struct {
	QuestionID int
	OptionID   int
	Text       string
}

func InsertResponse(ctx context.Context, tx *sql.Tx, surveyID int, ip, userAgent string, answers []AnswerRow) (int, error) {
	var responseID int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO response (survey_id, ip, user_agent, created_at) VALUES (?, ?, ?, ?)
		RETURNING id`,
		surveyID,
		ip,
		userAgent,
		time.Now(),
	).Scan(&responseID)
	if err != nil {
		return 0, errors.Wrap(err, "response.insert")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (response_id, question_id, option_id, text_answer)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "response.answers.prepare")
	}
	defer stmt.Close()

	for i, a := range answers {
		var optionID, text any
		if a.OptionID != 0 {
			optionID = a.OptionID
		} else {
			text = a.Text
		}
		_, err = stmt.ExecContext(ctx, responseID, a.QuestionID, optionID, text)
		if err != nil {
			return 0, errors.Wrapf(err, "response.answers.insert[%d]", i)
		}
	}

	return responseID, nil
}

// Analytics counts answers per option for choice questions and answers per
// question for free text ones, in list order.
func Analytics(ctx context.Context, db *sql.DB, surveyID int) (total int, stats []model.QuestionStats, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM response WHERE survey_id = ?`,
		surveyID,
	).Scan(&total)
	if err != nil {
		return 0, nil, errors.Wrap(err, "analytics.total")
	}

	questions, err := LoadStoredQuestions(ctx, db, surveyID)
	if err != nil {
		return 0, nil, err
	}

	optionCounts, err := countBy(ctx, db, `
		SELECT a.option_id, COUNT(*)
		FROM answer a
		INNER JOIN question q ON (q.id = a.question_id)
		WHERE q.survey_id = ? AND a.option_id IS NOT NULL
		GROUP BY a.option_id`,
		surveyID,
	)
	if err != nil {
		return 0, nil, errors.Wrap(err, "analytics.options")
	}

	textCounts, err := countBy(ctx, db, `
		SELECT a.question_id, COUNT(*)
		FROM answer a
		INNER JOIN question q ON (q.id = a.question_id)
		WHERE q.survey_id = ? AND a.text_answer IS NOT NULL
		GROUP BY a.question_id`,
		surveyID,
	)
	if err != nil {
		return 0, nil, errors.Wrap(err, "analytics.texts")
	}

	stats = make([]model.QuestionStats, len(questions))
	for i, q := range questions {
		stats[i] = model.QuestionStats{Text: q.Text, Kind: q.Kind}
		if !q.Kind.HasOptions() {
			stats[i].TextCount = textCounts[q.ID]
			continue
		}
		stats[i].Options = make([]model.OptionCount, len(q.Options))
		for j, opt := range q.Options {
			stats[i].Options[j] = model.OptionCount{Text: opt, Count: optionCounts[q.OptionIDs[j]]}
		}
	}
	return total, stats, nil
}

func countBy(ctx context.Context, db *sql.DB, query string, args ...any) (map[int]int, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[int]int{}
	for rows.Next() {
		var id, n int
		err = rows.Scan(&id, &n)
		if err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
