// Package builder implements the survey question list editor: an ordered
// list of questions kept in sync with a JSON backing field and rendered as
// a list of editable cards.
package builder

import (
	"fmt"
	"html/template"

	"github.com/mbolis/survey-builder/log"
	"github.com/mbolis/survey-builder/model"
)

const (
	DefaultQuestionText = "New question"
	DefaultOption       = "Option 1"
	NewOption           = "New option"
)

// Field is the backing store the editor reads on construction and
// rewrites after every mutation.
type Field interface {
	Value() string
	SetValue(string)
}

// Container receives the rendered card list.
type Container interface {
	Replace(view template.HTML)
}

// Editor owns a question list. It is not safe for concurrent use: each
// request builds its own editor from the posted backing field.
type Editor struct {
	questions []model.Question
	container Container
	field     Field
}

// New builds an editor from the current value of field, renders it into
// container and writes the normalized list back into field.
// An unreadable field yields an empty list.
func New(container Container, field Field) *Editor {
	decoded := Decode(field.Value())
	if !decoded.OK() {
		log.Debugf("builder.decode: %s", decoded.Err)
	}

	e := &Editor{
		questions: decoded.Questions,
		container: container,
		field:     field,
	}
	e.changed()
	return e
}

// Questions returns a copy of the current list.
func (e *Editor) Questions() []model.Question {
	return model.CloneQuestions(e.questions)
}

func (e *Editor) Len() int {
	return len(e.questions)
}

func (e *Editor) AddQuestion() {
	e.questions = append(e.questions, model.Question{
		Text:    DefaultQuestionText,
		Kind:    model.KindSingle,
		Options: []string{DefaultOption},
	})
	e.changed()
}

func (e *Editor) EditText(idx int, text string) {
	if !e.valid(idx) {
		return
	}
	e.questions[idx].Text = text
	e.sync()
}

// ChangeKind sets the kind of a question. A choice kind with no options
// gets a default one. Options are kept when switching to free text.
func (e *Editor) ChangeKind(idx int, kind model.Kind) {
	if !e.valid(idx) {
		return
	}
	if _, ok := model.ParseKind(string(kind)); !ok {
		return
	}

	q := &e.questions[idx]
	if kind.HasOptions() && len(q.Options) == 0 {
		q.Options = []string{DefaultOption}
	}
	q.Kind = kind
	e.changed()
}

func (e *Editor) AddOption(idx int) {
	if !e.valid(idx) || !e.questions[idx].Kind.HasOptions() {
		return
	}
	e.questions[idx].Options = append(e.questions[idx].Options, NewOption)
	e.changed()
}

func (e *Editor) EditOption(idx, opt int, value string) {
	if !e.validOption(idx, opt) {
		return
	}
	e.questions[idx].Options[opt] = value
	e.sync()
}

func (e *Editor) DeleteOption(idx, opt int) {
	if !e.validOption(idx, opt) {
		return
	}
	options := e.questions[idx].Options
	e.questions[idx].Options = append(options[:opt:opt], options[opt+1:]...)
	e.changed()
}

// Move swaps a question with its neighbor in direction dir (-1 or +1).
// Moves past either end of the list are ignored.
func (e *Editor) Move(idx, dir int) {
	if dir != -1 && dir != 1 {
		return
	}
	j := idx + dir
	if !e.valid(idx) || !e.valid(j) {
		return
	}
	e.questions[idx], e.questions[j] = e.questions[j], e.questions[idx]
	e.changed()
}

func (e *Editor) Delete(idx int) {
	if !e.valid(idx) {
		return
	}
	e.questions = append(e.questions[:idx:idx], e.questions[idx+1:]...)
	e.changed()
}

// Apply runs a structural command. Only an unknown op is an error;
// commands pointing outside the list do nothing.
func (e *Editor) Apply(cmd Command) error {
	switch cmd.Op {
	case OpSync:
		e.changed()
	case OpAddQuestion:
		e.AddQuestion()
	case OpDelete:
		e.Delete(cmd.Index)
	case OpMove:
		e.Move(cmd.Index, cmd.Arg)
	case OpAddOption:
		e.AddOption(cmd.Index)
	case OpDeleteOption:
		e.DeleteOption(cmd.Index, cmd.Arg)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
	}
	return nil
}

// ApplyEdits replays the in-place values posted with a form, card by card.
// Option values are applied before the kind, since the posted inputs belong
// to the cards as they were rendered. The card list is rendered once at the
// end if anything changed.
func (e *Editor) ApplyEdits(cards []CardInput) {
	before := e.Questions()

	for i, card := range cards {
		if !e.valid(i) {
			break
		}
		q := &e.questions[i]
		q.Text = card.Text
		for j, opt := range card.Options {
			if j < len(q.Options) {
				q.Options[j] = opt
			}
		}
		if kind, ok := model.ParseKind(card.Kind); ok && kind != q.Kind {
			if kind.HasOptions() && len(q.Options) == 0 {
				q.Options = []string{DefaultOption}
			}
			q.Kind = kind
		}
	}

	if !model.Equal(before, e.questions) {
		e.changed()
	}
}

func (e *Editor) valid(idx int) bool {
	return idx >= 0 && idx < len(e.questions)
}

func (e *Editor) validOption(idx, opt int) bool {
	return e.valid(idx) && opt >= 0 && opt < len(e.questions[idx].Options)
}

// changed re-renders the cards and re-serializes the list.
func (e *Editor) changed() {
	e.render()
	e.sync()
}

func (e *Editor) render() {
	view, err := Render(e.questions)
	if err != nil {
		log.Errorf("builder.render: %s", err)
		return
	}
	e.container.Replace(view)
}

func (e *Editor) sync() {
	payload, err := Encode(e.questions)
	if err != nil {
		log.Errorf("builder.encode: %s", err)
		return
	}
	e.field.SetValue(payload)
}
