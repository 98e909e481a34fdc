package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"sync", Command{Op: OpSync}},
		{"add-question", Command{Op: OpAddQuestion}},
		{"delete:3", Command{Op: OpDelete, Index: 3}},
		{"add-option:0", Command{Op: OpAddOption}},
		{"move:2:-1", Command{Op: OpMove, Index: 2, Arg: -1}},
		{" delete-option:1:4 ", Command{Op: OpDeleteOption, Index: 1, Arg: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd, err := ParseCommand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, in := range []string{"", "explode", "explode:1"} {
		_, err := ParseCommand(in)
		assert.ErrorIs(t, err, ErrUnknownCommand, in)
	}

	for _, in := range []string{"delete", "move:1", "move:1:up", "add-question:1", "delete:1:2"} {
		_, err := ParseCommand(in)
		assert.ErrorIs(t, err, ErrBadCommand, in)
	}
}

func TestCommandString(t *testing.T) {
	for _, cmd := range []Command{
		{Op: OpAddQuestion},
		{Op: OpDelete, Index: 4},
		{Op: OpMove, Index: 1, Arg: 1},
		{Op: OpDeleteOption, Index: 0, Arg: 2},
	} {
		parsed, err := ParseCommand(cmd.String())
		require.NoError(t, err)
		assert.Equal(t, cmd, parsed)
	}

	assert.Equal(t, "move:3:-1", Command{Op: OpMove, Index: 3, Arg: -1}.String())
}
