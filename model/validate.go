package model

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Validate checks a question list before it is stored.
// Every violation is collected; the result is nil or a *multierror.Error.
func Validate(questions []Question) error {
	var result *multierror.Error

	for i, q := range questions {
		n := i + 1
		if strings.TrimSpace(q.Text) == "" {
			result = multierror.Append(result, fmt.Errorf("question %d: text is empty", n))
		}
		if _, ok := ParseKind(string(q.Kind)); !ok {
			result = multierror.Append(result, fmt.Errorf("question %d: invalid type %q", n, q.Kind))
			continue
		}
		if !q.Kind.HasOptions() {
			continue
		}

		seen := make(map[string]bool, len(q.Options))
		nonEmpty := 0
		for _, opt := range q.Options {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				continue
			}
			nonEmpty++
			if seen[opt] {
				result = multierror.Append(result, fmt.Errorf("question %d: duplicate option %q", n, opt))
			}
			seen[opt] = true
		}
		if nonEmpty == 0 {
			result = multierror.Append(result, fmt.Errorf("question %d: at least one option is required", n))
		}
	}

	return result.ErrorOrNil()
}

// Messages flattens a validation error into one message per violation.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	if merr, ok := err.(*multierror.Error); ok {
		msgs := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			msgs[i] = e.Error()
		}
		return msgs
	}
	return []string{err.Error()}
}
