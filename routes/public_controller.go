package routes

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/survey-builder/app"
	"github.com/mbolis/survey-builder/database"
	"github.com/mbolis/survey-builder/httpx"
	"github.com/mbolis/survey-builder/log"
	"github.com/mbolis/survey-builder/model"
)

type IpCheck struct {
	op     bool
	ip     string
	result chan<- bool
}

// Submissions serializes the "is this IP already submitting" check, so a
// double click cannot record the same response twice.
type Submissions struct {
	checks chan IpCheck
}

func NewSubmissions() *Submissions {
	s := &Submissions{checks: make(chan IpCheck)}
	go func() {
		submissionIPs := make(map[string]bool)

		for req := range s.checks {
			if req.op {
				req.result <- submissionIPs[req.ip]
				submissionIPs[req.ip] = true
			} else {
				delete(submissionIPs, req.ip)
			}
		}
	}()
	return s
}

// Start marks ip as submitting; it reports false if it already was.
func (s *Submissions) Start(ip string) bool {
	busy := make(chan bool)
	s.checks <- IpCheck{true, ip, busy}
	return !<-busy
}

func (s *Submissions) Done(ip string) {
	s.checks <- IpCheck{false, ip, nil}
}

type submitRequest struct {
	Answers []model.Answer `json:"answers"`
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// loadPublicSurvey finds an active survey by share token, writing a 404
// when there is none.
func loadPublicSurvey(w http.ResponseWriter, r *http.Request, app app.App) (model.Survey, []database.StoredQuestion, bool) {
	token := chi.URLParam(r, "token")

	survey, err := database.GetSurveyByToken(r.Context(), app, token)
	if errors.Is(err, database.ErrNotFound) || (err == nil && !survey.IsActive) {
		httpx.LogNotFound(w, "get_public_survey", token)
		return survey, nil, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_public_survey", err)
		return survey, nil, false
	}

	stored, err := database.LoadStoredQuestions(r.Context(), app, survey.ID)
	if err != nil {
		httpx.LogInternalError(w, "db.get_public_survey.questions", err)
		return survey, nil, false
	}
	survey.Questions = make([]model.Question, len(stored))
	for i, q := range stored {
		survey.Questions[i] = q.Question
	}
	return survey, stored, true
}

// resolveAnswers maps answers given by position onto question and option
// ids. Empty text answers are skipped.
func resolveAnswers(stored []database.StoredQuestion, answers []model.Answer) ([]database.AnswerRow, error) {
	var result *multierror.Error
	rows := []database.AnswerRow{}
	answered := make(map[int]bool, len(answers))

	for _, a := range answers {
		if a.Question < 0 || a.Question >= len(stored) {
			result = multierror.Append(result, fmt.Errorf("unknown question %d", a.Question))
			continue
		}
		n := a.Question + 1
		if answered[a.Question] {
			result = multierror.Append(result, fmt.Errorf("question %d: answered twice", n))
			continue
		}
		answered[a.Question] = true

		q := stored[a.Question]
		if !q.Kind.HasOptions() {
			if len(a.Options) > 0 {
				result = multierror.Append(result, fmt.Errorf("question %d: expects a text answer", n))
				continue
			}
			if text := strings.TrimSpace(a.Text); text != "" {
				rows = append(rows, database.AnswerRow{QuestionID: q.ID, Text: text})
			}
			continue
		}

		if a.Text != "" {
			result = multierror.Append(result, fmt.Errorf("question %d: expects a choice", n))
			continue
		}
		if q.Kind == model.KindSingle && len(a.Options) > 1 {
			result = multierror.Append(result, fmt.Errorf("question %d: only one option can be chosen", n))
			continue
		}
		chosen := make(map[int]bool, len(a.Options))
		for _, opt := range a.Options {
			if opt < 0 || opt >= len(q.OptionIDs) {
				result = multierror.Append(result, fmt.Errorf("question %d: unknown option %d", n, opt))
				continue
			}
			if chosen[opt] {
				continue
			}
			chosen[opt] = true
			rows = append(rows, database.AnswerRow{QuestionID: q.ID, OptionID: q.OptionIDs[opt]})
		}
	}

	return rows, result.ErrorOrNil()
}

// recordResponse stores one response, writing the error response itself
// on failure.
func recordResponse(w http.ResponseWriter, r *http.Request, app app.App, submissions *Submissions, surveyId int, rows []database.AnswerRow) (int, bool) {
	ip := clientIP(r)
	if !submissions.Start(ip) {
		httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "ip.already_submitting")
		return 0, false
	}
	defer submissions.Done(ip)

	tx, err := app.BeginTx(r.Context(), nil)
	if err != nil {
		httpx.LogInternalError(w, "db.begin_tx", err)
		return 0, false
	}
	defer tx.Rollback()

	responseId, err := database.InsertResponse(r.Context(), tx, surveyId, ip, r.UserAgent(), rows)
	if err != nil {
		httpx.LogInternalError(w, "db.insert_response", err)
		return 0, false
	}

	err = tx.Commit()
	if err != nil {
		httpx.LogInternalError(w, "db.insert_response.commit", err)
		return 0, false
	}

	log.Debugf("survey %d: response %d recorded with %d answers", surveyId, responseId, len(rows))
	return responseId, true
}

func PublicGetSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, _, ok := loadPublicSurvey(w, r, app)
		if !ok {
			return
		}

		render.JSON(w, r, map[string]any{
			"title":        survey.Title,
			"description":  survey.Description,
			"is_anonymous": survey.IsAnonymous,
			"questions":    survey.Questions,
		})
	}
}

func PublicSubmitSurvey(app app.App, submissions *Submissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, stored, ok := loadPublicSurvey(w, r, app)
		if !ok {
			return
		}

		req := submitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		rows, err := resolveAnswers(stored, req.Answers)
		if err != nil {
			httpx.LogInvalid(w, r, "submit.validate", err)
			return
		}

		responseId, ok := recordResponse(w, r, app, submissions, survey.ID, rows)
		if !ok {
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": responseId,
		})
	}
}

func TakeSurveyForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, _, ok := loadPublicSurvey(w, r, app)
		if !ok {
			return
		}
		renderPage(w, http.StatusOK, "take", takePage{Title: survey.Title, Survey: survey})
	}
}

// TakeSurvey reads the take page post: one "q.<i>" key per question, a
// text for free text questions, option positions for choice ones.
func TakeSurvey(app app.App, submissions *Submissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, stored, ok := loadPublicSurvey(w, r, app)
		if !ok {
			return
		}

		err := r.ParseForm()
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_form")
			return
		}

		answers := []model.Answer{}
		for i, q := range stored {
			values := r.PostForm["q."+strconv.Itoa(i)]
			if len(values) == 0 {
				continue
			}
			a := model.Answer{Question: i}
			if !q.Kind.HasOptions() {
				a.Text = values[0]
			} else {
				for _, v := range values {
					opt, err := strconv.Atoi(v)
					if err != nil {
						httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_form.option")
						return
					}
					a.Options = append(a.Options, opt)
				}
			}
			answers = append(answers, a)
		}

		rows, err := resolveAnswers(stored, answers)
		if err != nil {
			log.Debugf("take_survey.validate: %s", err)
			renderPage(w, http.StatusUnprocessableEntity, "take", takePage{
				Title:  survey.Title,
				Survey: survey,
				Errors: model.Messages(err),
			})
			return
		}

		_, ok = recordResponse(w, r, app, submissions, survey.ID, rows)
		if !ok {
			return
		}

		renderPage(w, http.StatusOK, "thankyou", takePage{Title: "Thank you!", Survey: survey})
	}
}
