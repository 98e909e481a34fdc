package model

import "strings"

// Kind is the expected answer shape of a question.
type Kind string

const (
	KindText     Kind = "text"     // free text
	KindSingle   Kind = "single"   // single choice
	KindMultiple Kind = "multiple" // multiple choice
)

var kinds = []Kind{KindText, KindSingle, KindMultiple}

// Kinds lists every valid kind in display order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

func ParseKind(s string) (Kind, bool) {
	for _, k := range kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// HasOptions reports whether questions of this kind carry an option list.
func (k Kind) HasOptions() bool {
	return k == KindSingle || k == KindMultiple
}

func (k Kind) Label() string {
	switch k {
	case KindText:
		return "Free text"
	case KindSingle:
		return "Single choice"
	case KindMultiple:
		return "Multiple choice"
	}
	return string(k)
}

type Question struct {
	Text    string   `json:"text"`
	Kind    Kind     `json:"qtype"`
	Options []string `json:"options,omitempty"`
}

// Clone returns a deep copy, so the option slice is not shared.
func (q Question) Clone() Question {
	if q.Options != nil {
		q.Options = append([]string{}, q.Options...)
	}
	return q
}

func CloneQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out
}

// Equal reports whether two question lists are equivalent: same order,
// same text and kind, same options. Nil and empty option lists compare equal.
func Equal(a, b []Question) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text || a[i].Kind != b[i].Kind {
			return false
		}
		if len(a[i].Options) != len(b[i].Options) {
			return false
		}
		for j := range a[i].Options {
			if a[i].Options[j] != b[i].Options[j] {
				return false
			}
		}
	}
	return true
}

// Trimmed returns a copy of questions with surrounding whitespace removed
// from texts and options.
func Trimmed(questions []Question) []Question {
	out := CloneQuestions(questions)
	for i := range out {
		out[i].Text = strings.TrimSpace(out[i].Text)
		for j := range out[i].Options {
			out[i].Options[j] = strings.TrimSpace(out[i].Options[j])
		}
	}
	return out
}
