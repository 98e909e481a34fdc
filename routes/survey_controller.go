package routes

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ajg/form"
	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/mbolis/survey-builder/app"
	"github.com/mbolis/survey-builder/builder"
	"github.com/mbolis/survey-builder/database"
	"github.com/mbolis/survey-builder/httpx"
	"github.com/mbolis/survey-builder/log"
	"github.com/mbolis/survey-builder/model"
)

type newSurveyForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	IsAnonymous bool   `form:"is_anonymous"`
}

// surveyForm is the edit page post. Payload is the editor's backing field,
// Cards the in-place values of the rendered cards, Cmd the clicked button.
type surveyForm struct {
	Title       string              `form:"title"`
	Description string              `form:"description"`
	IsAnonymous bool                `form:"is_anonymous"`
	Version     int                 `form:"version"`
	Payload     string              `form:"questions_payload"`
	Cmd         string              `form:"cmd"`
	Cards       []builder.CardInput `form:"q"`
}

func decodeForm(r *http.Request, dst any) error {
	dec := form.NewDecoder(r.Body)
	dec.IgnoreUnknownKeys(true)
	return dec.Decode(dst)
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT s.id, s.title, s.is_active, s.created_at
			FROM survey s
			ORDER BY s.created_at DESC, s.id DESC`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}
		defer rows.Close()

		surveys := []model.Survey{}
		for rows.Next() {
			s := model.Survey{}
			err = rows.Scan(&s.ID, &s.Title, &s.IsActive, &s.CreatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_surveys.scan", err)
				return
			}
			surveys = append(surveys, s)
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_surveys.rows", err)
			return
		}

		renderPage(w, http.StatusOK, "list", listPage{Title: "Surveys", Surveys: surveys})
	}
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := newSurveyForm{}
		err := decodeForm(r, &f)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_form")
			return
		}
		title := strings.TrimSpace(f.Title)
		if title == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_survey.title", "title is required")
			return
		}

		var surveyId int
		err = app.QueryRowContext(r.Context(), `
			INSERT INTO survey (title, description, is_anonymous) VALUES (?, ?, ?)
			RETURNING id`,
			title,
			f.Description,
			f.IsAnonymous,
		).Scan(&surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		log.Infof("survey %d created", surveyId)
		http.Redirect(w, r, fmt.Sprintf("/surveys/%d/edit", surveyId), http.StatusSeeOther)
	}
}

func EditSurveyForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := database.GetSurvey(r.Context(), app, surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		questions, err := database.LoadQuestions(r.Context(), app, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey.questions", err)
			return
		}
		payload, err := builder.Encode(questions)
		if err != nil {
			httpx.LogInternalError(w, "builder.encode", err)
			return
		}

		view := &builder.View{}
		field := builder.NewTextField(payload)
		builder.New(view, field)

		renderPage(w, http.StatusOK, "edit", editPage{
			Title:   "Edit survey",
			Survey:  survey,
			Cards:   view.HTML(),
			Payload: field.Value(),
		})
	}
}

// EditSurvey handles every post of the edit page. With a cmd the editor
// command is applied and the page is rendered again, nothing is stored.
// Without one the question list is validated and saved.
func EditSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		f := surveyForm{}
		err = decodeForm(r, &f)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_form")
			return
		}

		survey := model.Survey{
			ID:          surveyId,
			Version:     f.Version,
			Title:       f.Title,
			Description: f.Description,
			IsAnonymous: f.IsAnonymous,
		}

		view := &builder.View{}
		field := builder.NewTextField(f.Payload)
		editor := builder.New(view, field)
		editor.ApplyEdits(f.Cards)

		page := editPage{Title: "Edit survey", Survey: survey}

		if f.Cmd != "" {
			cmd, err := builder.ParseCommand(f.Cmd)
			if err == nil {
				err = editor.Apply(cmd)
			}
			if err != nil {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "builder.command", "%s", err)
				return
			}

			page.Cards, page.Payload = view.HTML(), field.Value()
			renderPage(w, http.StatusOK, "edit", page)
			return
		}

		questions := model.Trimmed(editor.Questions())
		survey.Title = strings.TrimSpace(survey.Title)

		var errs []string
		if survey.Title == "" {
			errs = append(errs, "title is required")
		}
		errs = append(errs, model.Messages(model.Validate(questions))...)
		if len(errs) > 0 {
			log.Debugf("edit_survey.validate: %d errors", len(errs))
			page.Cards, page.Payload, page.Errors = view.HTML(), field.Value(), errs
			renderPage(w, http.StatusUnprocessableEntity, "edit", page)
			return
		}

		status, code, err := saveSurvey(r, app, survey, questions)
		if err != nil {
			if status == http.StatusInternalServerError {
				httpx.LogInternalError(w, code, err)
			} else {
				httpx.LogStatusMsg(w, status, log.DebugLevel, code, "%s", err)
			}
			return
		}

		log.Infof("survey %d saved with %d questions", surveyId, len(questions))
		http.Redirect(w, r, fmt.Sprintf("/surveys/%d/edit", surveyId), http.StatusSeeOther)
	}
}

var errConflict = errors.New("the survey was modified in the meantime, reload it and retry")

// saveSurvey updates survey fields and its question list in one
// transaction, guarded by the version the client started from.
func saveSurvey(r *http.Request, app app.App, survey model.Survey, questions []model.Question) (status int, code string, err error) {
	tx, err := app.BeginTx(r.Context(), nil)
	if err != nil {
		return http.StatusInternalServerError, "db.begin_tx", err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(r.Context(), `
		UPDATE survey
		SET
			title = ?,
			description = ?,
			is_anonymous = ?,
			version = version+1
		WHERE id = ?
			AND version = ?`,
		survey.Title,
		survey.Description,
		survey.IsAnonymous,
		survey.ID,
		survey.Version,
	)
	if err != nil {
		return http.StatusInternalServerError, "db.update_survey", err
	}
	// optimistic lock
	n, err := res.RowsAffected()
	if err != nil {
		return http.StatusInternalServerError, "db.update_survey.verify", err
	}
	if n < 1 {
		_, err = database.GetSurvey(r.Context(), tx, survey.ID)
		if errors.Is(err, database.ErrNotFound) {
			return http.StatusNotFound, "update_survey", err
		}
		if err != nil {
			return http.StatusInternalServerError, "db.update_survey.verify", err
		}
		return http.StatusConflict, "db.update_survey.verify.conflict", errConflict
	}

	err = database.ReplaceQuestions(r.Context(), tx, survey.ID, questions)
	if err != nil {
		return http.StatusInternalServerError, "db.update_survey.questions", err
	}

	err = tx.Commit()
	if err != nil {
		return http.StatusInternalServerError, "db.update_survey.commit", err
	}
	return http.StatusOK, "", nil
}

func ToggleSurveyStatus(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		res, err := app.ExecContext(r.Context(), `
			UPDATE survey SET is_active = NOT is_active WHERE id = ?`,
			surveyId,
		)
		if !checkAffected(w, res, err, "toggle_survey", surveyId) {
			return
		}

		http.Redirect(w, r, "/surveys", http.StatusSeeOther)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		// questions, options, responses and answers cascade
		res, err := app.ExecContext(r.Context(), `
			DELETE FROM survey WHERE id = ?`,
			surveyId,
		)
		if !checkAffected(w, res, err, "delete_survey", surveyId) {
			return
		}

		log.Infof("survey %d deleted", surveyId)
		http.Redirect(w, r, "/surveys", http.StatusSeeOther)
	}
}

// checkAffected reports whether a single-row statement hit its row,
// writing the error response when it did not.
func checkAffected(w http.ResponseWriter, res sql.Result, err error, code string, id int) bool {
	if err != nil {
		httpx.LogInternalError(w, "db."+code, err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		httpx.LogInternalError(w, "db."+code+".verify", err)
		return false
	}
	if n < 1 {
		httpx.LogNotFound(w, code, id)
		return false
	}
	return true
}

func ExportQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		_, err = database.GetSurvey(r.Context(), app, surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "export_questions", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		questions, err := database.LoadQuestions(r.Context(), app, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey.questions", err)
			return
		}
		payload, err := builder.Encode(questions)
		if err != nil {
			httpx.LogInternalError(w, "builder.encode", err)
			return
		}

		w.Header().Set("content-type", "application/json")
		w.Header().Set("content-disposition", fmt.Sprintf(`attachment; filename="survey-%d-questions.json"`, surveyId))
		w.Write([]byte(payload))
	}
}

func ShareSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := database.GetSurvey(r.Context(), app, surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "share_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		if survey.ShareToken == "" {
			token, err := uuid.NewV4()
			if err != nil {
				httpx.LogInternalError(w, "share_survey.token", err)
				return
			}
			// a concurrent request may have set it first: keep that one
			_, err = app.ExecContext(r.Context(), `
				UPDATE survey SET share_token = ?
				WHERE id = ? AND share_token IS NULL`,
				strings.ReplaceAll(token.String(), "-", ""),
				surveyId,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.share_survey", err)
				return
			}
			survey, err = database.GetSurvey(r.Context(), app, surveyId)
			if err != nil {
				httpx.LogInternalError(w, "db.get_survey", err)
				return
			}
		}

		renderPage(w, http.StatusOK, "share", sharePage{
			Title:    "Share survey",
			Survey:   survey,
			ShareUrl: app.ShareUrl(survey.ShareToken),
		})
	}
}
