package builder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrBadCommand     = errors.New("malformed command")
	ErrUnknownCommand = errors.New("unknown command")
)

type Op string

const (
	OpSync         Op = "sync"
	OpAddQuestion  Op = "add-question"
	OpDelete       Op = "delete"
	OpMove         Op = "move"
	OpAddOption    Op = "add-option"
	OpDeleteOption Op = "delete-option"
)

// arity is the number of integer arguments following the op.
var arity = map[Op]int{
	OpSync:         0,
	OpAddQuestion:  0,
	OpDelete:       1,
	OpAddOption:    1,
	OpMove:         2,
	OpDeleteOption: 2,
}

// Command is a structural edit triggered by a button on the rendered cards.
// Index is the question position; Arg is the move direction for OpMove
// and the option position for OpDeleteOption.
type Command struct {
	Op    Op  `json:"op"`
	Index int `json:"index"`
	Arg   int `json:"arg"`
}

// ParseCommand reads the "op[:index[:arg]]" form used as button values.
func ParseCommand(s string) (Command, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	cmd := Command{Op: Op(parts[0])}

	n, ok := arity[cmd.Op]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
	}
	if len(parts)-1 != n {
		return Command{}, fmt.Errorf("%w: %q", ErrBadCommand, s)
	}

	args := make([]int, n)
	for i, p := range parts[1:] {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrBadCommand, s)
		}
		args[i] = v
	}
	if n > 0 {
		cmd.Index = args[0]
	}
	if n > 1 {
		cmd.Arg = args[1]
	}
	return cmd, nil
}

func (c Command) String() string {
	switch arity[c.Op] {
	case 1:
		return fmt.Sprintf("%s:%d", c.Op, c.Index)
	case 2:
		return fmt.Sprintf("%s:%d:%d", c.Op, c.Index, c.Arg)
	}
	return string(c.Op)
}

// CardInput carries the in-place values of one rendered card, as posted
// back by the browser.
type CardInput struct {
	Text    string   `form:"text" json:"text"`
	Kind    string   `form:"qtype" json:"qtype"`
	Options []string `form:"options" json:"options"`
}
