package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/survey-builder/app"
	"github.com/mbolis/survey-builder/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	submissions := NewSubmissions()

	root := chi.NewRouter()
	root.Use(middleware.RequestID, middleware.RealIP, middlewares.RequestLog, middleware.Recoverer)

	root.Mount("/api", apiRouter(app, submissions))

	root.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/surveys", http.StatusFound)
	})

	root.Route("/surveys", func(r chi.Router) {
		r.Use(middlewares.NoStore)

		r.Get("/", ListSurveys(app))
		r.Post("/", CreateSurvey(app))
		r.Get(`/{id:^\d+$}/edit`, EditSurveyForm(app))
		r.Post(`/{id:^\d+$}/edit`, EditSurvey(app))
		r.Post(`/{id:^\d+$}/status`, ToggleSurveyStatus(app))
		r.Post(`/{id:^\d+$}/delete`, DeleteSurvey(app))
		r.Get(`/{id:^\d+$}/export`, ExportQuestions(app))
		r.Get(`/{id:^\d+$}/share`, ShareSurvey(app))
	})

	root.Get("/s/{token}", TakeSurveyForm(app))
	root.Post("/s/{token}", TakeSurvey(app, submissions))

	return root
}

func apiRouter(app app.App, submissions *Submissions) http.Handler {
	api := chi.NewRouter()

	api.Post("/builder", BuilderCommand)

	api.Get(`/surveys/{id:^\d+$}/questions`, GetQuestions(app))
	api.Put(`/surveys/{id:^\d+$}/questions`, PutQuestions(app))
	api.Get(`/surveys/{id:^\d+$}/analytics`, GetAnalytics(app))

	api.Get("/s/{token}", PublicGetSurvey(app))
	api.Post("/s/{token}/responses", PublicSubmitSurvey(app, submissions))

	return api
}
