package builder

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mbolis/survey-builder/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T, payload string) (*Editor, *View, *TextField) {
	t.Helper()
	view := &View{}
	field := NewTextField(payload)
	return New(view, field), view, field
}

// stored decodes the backing field, failing the test if it is not valid.
func stored(t *testing.T, field *TextField) []model.Question {
	t.Helper()
	d := Decode(field.Value())
	require.True(t, d.OK(), "backing field is not valid: %v", d.Err)
	return d.Questions
}

func threeQuestions() string {
	return `[
		{"text":"A","qtype":"single","options":["a1","a2"]},
		{"text":"B","qtype":"text"},
		{"text":"C","qtype":"multiple","options":["c1"]},
		{"text":"D","qtype":"single","options":["d1"]}
	]`
}

func texts(questions []model.Question) string {
	s := make([]string, len(questions))
	for i, q := range questions {
		s[i] = q.Text
	}
	return strings.Join(s, "")
}

func TestNewWithMalformedField(t *testing.T) {
	e, view, field := newEditor(t, "{not json")

	assert.Equal(t, 0, e.Len())
	assert.Equal(t, "[]", field.Value())
	assert.Equal(t, 1, view.Renders())
	assert.Contains(t, string(view.HTML()), `value="add-question"`)
	assert.NotContains(t, string(view.HTML()), `class="q-card"`)
}

func TestNewNormalizesField(t *testing.T) {
	e, view, field := newEditor(t, `[{"text":"Why?","qtype":"text"}]`)

	assert.Equal(t, 1, e.Len())
	assert.Equal(t, "[\n  {\n    \"text\": \"Why?\",\n    \"qtype\": \"text\"\n  }\n]", field.Value())
	assert.Equal(t, 1, strings.Count(string(view.HTML()), `class="q-card"`))
}

func TestScenarioBuildSurvey(t *testing.T) {
	e, _, field := newEditor(t, "[]")

	e.AddQuestion()
	e.EditText(0, "Age?")
	e.AddQuestion()
	e.ChangeKind(1, model.KindMultiple)
	e.EditOption(1, 0, "18-25")
	e.AddOption(1)
	e.EditOption(1, 1, "26-35")

	want := []model.Question{
		{Text: "Age?", Kind: model.KindSingle, Options: []string{DefaultOption}},
		{Text: DefaultQuestionText, Kind: model.KindMultiple, Options: []string{"18-25", "26-35"}},
	}
	assert.True(t, model.Equal(want, stored(t, field)), "got %s", field.Value())
	assert.True(t, model.Equal(want, e.Questions()))
}

func TestAddQuestionDefaults(t *testing.T) {
	e, view, _ := newEditor(t, "")
	e.AddQuestion()

	q := e.Questions()[0]
	assert.Equal(t, model.KindSingle, q.Kind)
	assert.NotEmpty(t, q.Text)
	assert.Len(t, q.Options, 1)
	assert.Equal(t, 2, view.Renders())
}

func TestMoveRestoresOrder(t *testing.T) {
	for idx := 1; idx < 4; idx++ {
		t.Run(fmt.Sprint(idx), func(t *testing.T) {
			e, _, field := newEditor(t, threeQuestions())
			original := e.Questions()

			e.Move(idx, -1)
			assert.NotEqual(t, texts(original), texts(e.Questions()))
			assert.Equal(t, original[idx].Text, e.Questions()[idx-1].Text)

			e.Move(idx-1, 1)
			assert.True(t, model.Equal(original, e.Questions()))
			assert.True(t, model.Equal(original, stored(t, field)))
		})
	}
}

func TestMoveOutOfRangeIsNoop(t *testing.T) {
	e, view, field := newEditor(t, threeQuestions())
	before := field.Value()
	renders := view.Renders()

	e.Move(0, -1)
	e.Move(3, 1)
	e.Move(-1, 1)
	e.Move(4, -1)
	e.Move(1, 2)
	e.Move(1, 0)

	assert.Equal(t, "ABCD", texts(e.Questions()))
	assert.Equal(t, before, field.Value())
	assert.Equal(t, renders, view.Renders())
}

func TestDeleteQuestion(t *testing.T) {
	e, view, field := newEditor(t, threeQuestions())

	e.Delete(1)
	assert.Equal(t, "ACD", texts(e.Questions()))
	assert.Equal(t, "ACD", texts(stored(t, field)))
	assert.Equal(t, 3, strings.Count(string(view.HTML()), `class="q-card"`))

	e.Delete(3)
	e.Delete(-1)
	assert.Equal(t, "ACD", texts(e.Questions()))
}

func TestDeleteThenAddOption(t *testing.T) {
	e, _, field := newEditor(t, threeQuestions())
	original := len(e.Questions()[0].Options)

	e.DeleteOption(0, 0)
	assert.Equal(t, []string{"a2"}, e.Questions()[0].Options)

	e.AddOption(0)
	assert.Len(t, e.Questions()[0].Options, original)
	assert.Equal(t, []string{"a2", NewOption}, stored(t, field)[0].Options)
}

func TestOptionIndexOutOfRange(t *testing.T) {
	e, view, field := newEditor(t, threeQuestions())
	before := field.Value()
	renders := view.Renders()

	e.DeleteOption(0, 2)
	e.DeleteOption(0, -1)
	e.DeleteOption(9, 0)
	e.EditOption(0, 5, "x")
	e.EditOption(1, 0, "x")

	assert.Equal(t, before, field.Value())
	assert.Equal(t, renders, view.Renders())
}

func TestAddOptionOnFreeTextIsIgnored(t *testing.T) {
	e, _, _ := newEditor(t, threeQuestions())

	e.AddOption(1)
	assert.Empty(t, e.Questions()[1].Options)
}

func TestInPlaceEditsDoNotRerender(t *testing.T) {
	e, view, field := newEditor(t, threeQuestions())
	renders := view.Renders()

	e.EditText(0, "Renamed")
	e.EditOption(0, 1, "changed")

	assert.Equal(t, renders, view.Renders())
	got := stored(t, field)
	assert.Equal(t, "Renamed", got[0].Text)
	assert.Equal(t, []string{"a1", "changed"}, got[0].Options)
}

func TestChangeKind(t *testing.T) {
	t.Run("seeds an option when leaving free text", func(t *testing.T) {
		e, view, _ := newEditor(t, threeQuestions())
		renders := view.Renders()

		e.ChangeKind(1, model.KindMultiple)

		assert.Equal(t, model.KindMultiple, e.Questions()[1].Kind)
		assert.Equal(t, []string{DefaultOption}, e.Questions()[1].Options)
		assert.Equal(t, renders+1, view.Renders())
		assert.Contains(t, string(view.HTML()), `name="q.1.options.0"`)
	})

	t.Run("keeps options across a free text round trip", func(t *testing.T) {
		e, view, field := newEditor(t, threeQuestions())

		e.ChangeKind(0, model.KindText)
		assert.NotContains(t, string(view.HTML()), `name="q.0.options.0"`)
		assert.Equal(t, []string{"a1", "a2"}, stored(t, field)[0].Options)

		e.ChangeKind(0, model.KindSingle)
		assert.Equal(t, []string{"a1", "a2"}, e.Questions()[0].Options)
		assert.Contains(t, string(view.HTML()), `name="q.0.options.1"`)
	})

	t.Run("ignores unknown kinds", func(t *testing.T) {
		e, _, field := newEditor(t, threeQuestions())
		before := field.Value()

		e.ChangeKind(0, model.Kind("rating"))
		e.ChangeKind(7, model.KindText)

		assert.Equal(t, before, field.Value())
	})
}

func TestFieldStaysFaithful(t *testing.T) {
	e, _, field := newEditor(t, threeQuestions())

	e.AddQuestion()
	e.Move(4, -1)
	e.ChangeKind(0, model.KindText)
	e.DeleteOption(2, 0)
	e.EditText(1, "")
	e.Delete(3)

	assert.True(t, model.Equal(e.Questions(), stored(t, field)))

	// rebuilding from the field reproduces the same cards
	again, view, _ := newEditor(t, field.Value())
	assert.True(t, model.Equal(e.Questions(), again.Questions()))
	want, err := Render(e.Questions())
	require.NoError(t, err)
	assert.Equal(t, want, view.HTML())
}

func TestQuestionsReturnsCopy(t *testing.T) {
	e, _, _ := newEditor(t, threeQuestions())

	q := e.Questions()
	q[0].Text = "changed"
	q[0].Options[0] = "changed"

	assert.Equal(t, "A", e.Questions()[0].Text)
	assert.Equal(t, "a1", e.Questions()[0].Options[0])
}

func TestApply(t *testing.T) {
	e, view, _ := newEditor(t, threeQuestions())

	require.NoError(t, e.Apply(Command{Op: OpMove, Index: 0, Arg: 1}))
	assert.Equal(t, "BACD", texts(e.Questions()))

	require.NoError(t, e.Apply(Command{Op: OpDelete, Index: 3}))
	require.NoError(t, e.Apply(Command{Op: OpAddOption, Index: 1}))
	require.NoError(t, e.Apply(Command{Op: OpDeleteOption, Index: 1, Arg: 0}))
	require.NoError(t, e.Apply(Command{Op: OpAddQuestion}))
	assert.Equal(t, "BAC"+DefaultQuestionText, texts(e.Questions()))
	assert.Equal(t, []string{"a2", NewOption}, e.Questions()[1].Options)

	// out of range is not an error
	require.NoError(t, e.Apply(Command{Op: OpDelete, Index: 40}))

	renders := view.Renders()
	require.NoError(t, e.Apply(Command{Op: OpSync}))
	assert.Equal(t, renders+1, view.Renders())

	err := e.Apply(Command{Op: "explode"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestApplyEdits(t *testing.T) {
	e, view, field := newEditor(t, threeQuestions())
	renders := view.Renders()

	e.ApplyEdits([]CardInput{
		{Text: "A2", Kind: "single", Options: []string{"x", "y", "ignored"}},
		{Text: "B", Kind: "single"},
		{Text: "C", Kind: "text", Options: []string{"c1 edited"}},
		{Text: "D", Kind: "bogus", Options: []string{"d1"}},
		{Text: "beyond the list"},
	})

	want := []model.Question{
		{Text: "A2", Kind: model.KindSingle, Options: []string{"x", "y"}},
		{Text: "B", Kind: model.KindSingle, Options: []string{DefaultOption}},
		{Text: "C", Kind: model.KindText, Options: []string{"c1 edited"}},
		{Text: "D", Kind: model.KindSingle, Options: []string{"d1"}},
	}
	assert.True(t, model.Equal(want, e.Questions()), "got %+v", e.Questions())
	assert.True(t, model.Equal(want, stored(t, field)))
	assert.Equal(t, renders+1, view.Renders())

	// unchanged values do not re-render
	e.ApplyEdits([]CardInput{{Text: "A2", Kind: "single", Options: []string{"x", "y"}}})
	assert.Equal(t, renders+1, view.Renders())
}

func TestRenderIsIdempotent(t *testing.T) {
	questions := Decode(threeQuestions()).Questions

	first, err := Render(questions)
	require.NoError(t, err)
	second, err := Render(questions)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	html := string(first)
	assert.Equal(t, 4, strings.Count(html, `class="q-card"`))
	assert.Equal(t, 12, strings.Count(html, "<option "))
	assert.Equal(t, 3, strings.Count(html, "Add option"))
	assert.Equal(t, 1, strings.Count(html, `value="add-question"`))
	assert.Contains(t, html, `value="move:0:-1"`)
	assert.Contains(t, html, `value="delete-option:0:1"`)
	assert.Contains(t, html, `<option value="text" selected>Free text</option>`)
}

func TestRenderEscapes(t *testing.T) {
	html, err := Render([]model.Question{
		{Text: `<b>"bold"</b>`, Kind: model.KindSingle, Options: []string{"<i>"}},
	})
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<b>")
	assert.NotContains(t, string(html), "<i>")
	assert.Contains(t, string(html), "&lt;b&gt;")
}
