package builder

import "html/template"

// TextField is an in-memory backing field, as posted by a form.
type TextField struct {
	value string
}

func NewTextField(value string) *TextField {
	return &TextField{value: value}
}

func (f *TextField) Value() string {
	return f.value
}

func (f *TextField) SetValue(value string) {
	f.value = value
}

// View holds the last rendered card list.
type View struct {
	html    template.HTML
	renders int
}

func (v *View) Replace(html template.HTML) {
	v.html = html
	v.renders++
}

func (v *View) HTML() template.HTML {
	return v.html
}

// Renders counts how many times the card list was replaced.
func (v *View) Renders() int {
	return v.renders
}
