package builder

import (
	"strings"
	"testing"

	"github.com/mbolis/survey-builder/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
		want []model.Question
	}{
		{name: "empty", raw: "", ok: true, want: []model.Question{}},
		{name: "blank", raw: "  \n", ok: true, want: []model.Question{}},
		{name: "empty array", raw: "[]", ok: true, want: []model.Question{}},
		{name: "null", raw: "null", ok: true, want: []model.Question{}},
		{
			name: "list",
			raw:  `[{"text":"Age?","qtype":"single","options":["18-25","26-35"]},{"text":"Why?","qtype":"text"}]`,
			ok:   true,
			want: []model.Question{
				{Text: "Age?", Kind: model.KindSingle, Options: []string{"18-25", "26-35"}},
				{Text: "Why?", Kind: model.KindText},
			},
		},
		{
			name: "missing qtype defaults to single",
			raw:  `[{"text":"Pick one","options":["a"]}]`,
			ok:   true,
			want: []model.Question{{Text: "Pick one", Kind: model.KindSingle, Options: []string{"a"}}},
		},
		{name: "malformed", raw: "{not json", ok: false, want: []model.Question{}},
		{name: "object instead of array", raw: `{"text":"Age?"}`, ok: false, want: []model.Question{}},
		{name: "wrong field type", raw: `[{"text":42}]`, ok: false, want: []model.Question{}},
		{name: "unknown qtype", raw: `[{"text":"Rate us","qtype":"rating"}]`, ok: false, want: []model.Question{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decode(tt.raw)

			assert.Equal(t, tt.ok, d.OK(), "err: %v", d.Err)
			require.NotNil(t, d.Questions)
			assert.True(t, model.Equal(tt.want, d.Questions), "got %+v", d.Questions)
		})
	}
}

func TestDecodeUnknownKindError(t *testing.T) {
	d := Decode(`[{"text":"a","qtype":"text"},{"text":"b","qtype":"scale"}]`)
	assert.ErrorIs(t, d.Err, ErrUnknownKind)
	assert.Empty(t, d.Questions)
}

func TestEncode(t *testing.T) {
	s, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = Encode([]model.Question{{Text: "Why?", Kind: model.KindText}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "[\n  {\n    \"text\": \"Why?\""), s)
	assert.NotContains(t, s, "options")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	lists := [][]model.Question{
		{},
		{{Text: "", Kind: model.KindSingle, Options: []string{}}},
		{
			{Text: "Age?", Kind: model.KindSingle, Options: []string{"18-25", "26-35"}},
			{Text: "<b>Bold</b> & \"quoted\"", Kind: model.KindMultiple, Options: []string{"", "Вариант 1", "a\nb"}},
			{Text: "Comments", Kind: model.KindText, Options: []string{"kept"}},
		},
	}

	for _, list := range lists {
		s, err := Encode(list)
		require.NoError(t, err)

		d := Decode(s)
		require.True(t, d.OK(), "err: %v", d.Err)
		assert.True(t, model.Equal(list, d.Questions), "got %+v", d.Questions)
	}
}
