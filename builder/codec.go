package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mbolis/survey-builder/model"
)

var ErrUnknownKind = errors.New("unknown question type")

// Decoded is the outcome of parsing a backing field.
// On failure Questions is an empty list and Err holds the cause.
type Decoded struct {
	Questions []model.Question
	Err       error
}

func (d Decoded) OK() bool {
	return d.Err == nil
}

// Decode parses a JSON array of questions. It never fails hard: malformed
// input yields an empty list together with the parse error.
func Decode(raw string) Decoded {
	if strings.TrimSpace(raw) == "" {
		return Decoded{Questions: []model.Question{}}
	}

	var questions []model.Question
	err := json.Unmarshal([]byte(raw), &questions)
	if err != nil {
		return Decoded{Questions: []model.Question{}, Err: err}
	}
	if questions == nil {
		questions = []model.Question{}
	}

	for i := range questions {
		q := &questions[i]
		if q.Kind == "" {
			q.Kind = model.KindSingle
			continue
		}
		if _, ok := model.ParseKind(string(q.Kind)); !ok {
			return Decoded{
				Questions: []model.Question{},
				Err:       fmt.Errorf("question %d: %w %q", i, ErrUnknownKind, q.Kind),
			}
		}
	}

	return Decoded{Questions: questions}
}

// Encode serializes questions as indented JSON, always producing an array.
func Encode(questions []model.Question) (string, error) {
	if questions == nil {
		questions = []model.Question{}
	}
	b, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
