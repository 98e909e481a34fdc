package routes

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/mbolis/survey-builder/httpx"
	"github.com/mbolis/survey-builder/model"
)

//go:embed templates
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type listPage struct {
	Title   string
	Surveys []model.Survey
}

type editPage struct {
	Title   string
	Survey  model.Survey
	Cards   template.HTML
	Payload string
	Errors  []string
}

type sharePage struct {
	Title    string
	Survey   model.Survey
	ShareUrl string
}

type takePage struct {
	Title  string
	Survey model.Survey
	Errors []string
}

// renderPage executes a page template into a buffer first, so a template
// failure turns into a clean 500 instead of a truncated page.
func renderPage(w http.ResponseWriter, status int, name string, data any) {
	buf := httpx.NewResponseBuffer()
	buf.Header().Set("content-type", "text/html; charset=utf-8")
	buf.WriteHeader(status)

	err := pages.ExecuteTemplate(buf, name, data)
	if err != nil {
		httpx.LogInternalError(w, "page.render."+name, err)
		return
	}
	buf.Flush(w)
}
