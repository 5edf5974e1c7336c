package driver

import "fmt"

// Sequence is a fixed list of commands addressed by index, such as the same
// setting on every channel of an instrument.
type Sequence struct {
	commands []*Command
}

// NewSequence creates a sequence. It needs at least one command and no
// command may be nil.
func NewSequence(cmds ...*Command) (*Sequence, error) {
	if len(cmds) == 0 {
		return nil, fmt.Errorf("sequence needs at least one command")
	}
	for i, cmd := range cmds {
		if cmd == nil {
			return nil, fmt.Errorf("command %d is nil", i)
		}
	}
	return &Sequence{commands: append([]*Command(nil), cmds...)}, nil
}

// Len returns the number of commands.
func (s *Sequence) Len() int {
	return len(s.commands)
}

// At returns the command at index i. Negative indices count from the end,
// so -1 is the last command.
func (s *Sequence) At(i int) (*Command, error) {
	i, err := index(i, len(s.commands))
	if err != nil {
		return nil, err
	}
	return s.commands[i], nil
}

// Commands returns a copy of the commands in order.
func (s *Sequence) Commands() []*Command {
	return append([]*Command(nil), s.commands...)
}

// index converts a possibly negative index into a position in [0, length).
func index(i, length int) (int, error) {
	pos := i
	if pos < 0 {
		pos += length
	}
	if pos < 0 || pos >= length {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, length)
	}
	return pos, nil
}
