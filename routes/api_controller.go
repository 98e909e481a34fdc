package routes

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/survey-builder/app"
	"github.com/mbolis/survey-builder/builder"
	"github.com/mbolis/survey-builder/database"
	"github.com/mbolis/survey-builder/httpx"
	"github.com/mbolis/survey-builder/log"
	"github.com/mbolis/survey-builder/model"
)

type builderRequest struct {
	Payload string              `json:"payload"`
	Edits   []builder.CardInput `json:"edits"`
	Command string              `json:"command"`
}

type builderResponse struct {
	Payload   string           `json:"payload"`
	HTML      template.HTML    `json:"html"`
	Questions []model.Question `json:"questions"`
}

// BuilderCommand is the fetch-based counterpart of the edit page post:
// it rebuilds an editor from the payload, applies edits and command, and
// returns the new payload and cards.
func BuilderCommand(w http.ResponseWriter, r *http.Request) {
	req := builderRequest{}
	err := render.DecodeJSON(r.Body, &req)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
		return
	}

	cmd := builder.Command{Op: builder.OpSync}
	if req.Command != "" {
		cmd, err = builder.ParseCommand(req.Command)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "builder.command", "%s", err)
			return
		}
	}

	view := &builder.View{}
	field := builder.NewTextField(req.Payload)
	editor := builder.New(view, field)
	editor.ApplyEdits(req.Edits)
	err = editor.Apply(cmd)
	if err != nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "builder.command", "%s", err)
		return
	}

	render.JSON(w, r, builderResponse{
		Payload:   field.Value(),
		HTML:      view.HTML(),
		Questions: editor.Questions(),
	})
}

func GetQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := database.GetSurvey(r.Context(), app, surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_questions", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		survey.Questions, err = database.LoadQuestions(r.Context(), app, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey.questions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"version":   survey.Version,
			"questions": survey.Questions,
		})
	}
}

// PutQuestions replaces the question list of a survey. The body is the
// same JSON array the editor writes into its backing field.
func PutQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.read_body")
			return
		}
		decoded := builder.Decode(string(body))
		if !decoded.OK() {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", decoded.Err)
			return
		}

		questions := model.Trimmed(decoded.Questions)
		err = model.Validate(questions)
		if err != nil {
			httpx.LogInvalid(w, r, "put_questions.validate", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(r.Context(), `
			UPDATE survey SET version = version+1 WHERE id = ?`,
			surveyId,
		)
		if !checkAffected(w, res, err, "put_questions", surveyId) {
			return
		}

		err = database.ReplaceQuestions(r.Context(), tx, surveyId, questions)
		if err != nil {
			httpx.LogInternalError(w, "db.put_questions", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.put_questions.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		_, err = database.GetSurvey(r.Context(), app, surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_analytics", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		total, stats, err := database.Analytics(r.Context(), app.DB, surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_analytics", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"total_responses": total,
			"questions":       stats,
		})
	}
}
