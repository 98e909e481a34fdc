package builder

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/mbolis/survey-builder/model"
)

//go:embed templates
var templateFS embed.FS

var cardsTemplate = template.Must(
	template.New("builder").
		Funcs(template.FuncMap{
			"inc":   func(i int) int { return i + 1 },
			"kinds": model.Kinds,
			"cmd": func(op Op, index, arg int) string {
				return Command{Op: op, Index: index, Arg: arg}.String()
			},
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// Render produces the card list for questions. It depends on nothing but
// its argument, so the same list always renders to the same markup.
func Render(questions []model.Question) (template.HTML, error) {
	var buf bytes.Buffer
	err := cardsTemplate.ExecuteTemplate(&buf, "cards", questions)
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
