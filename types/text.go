package types

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Default Boolean tokens.
const (
	DefaultTrueToken  = "1"
	DefaultFalseToken = "0"
)

const simulationAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Boolean represents a boolean value. It is encoded as one of two canonical
// tokens, "1" and "0" unless True and False are set.
//
// Decode accepts either token case-insensitively. Any other integer text
// decodes as value != 0.
type Boolean struct {
	True  string
	False string
}

func (t Boolean) tokens() (string, string) {
	tr, fa := t.True, t.False
	if tr == "" {
		tr = DefaultTrueToken
	}
	if fa == "" {
		fa = DefaultFalseToken
	}
	return tr, fa
}

// Encode returns the True or False token.
func (t Boolean) Encode(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", invalid(t, v, "not a bool")
	}
	tr, fa := t.tokens()
	if b {
		return tr, nil
	}
	return fa, nil
}

func (t Boolean) Decode(text string) (any, error) {
	s := strings.TrimSpace(text)
	tr, fa := t.tokens()
	switch {
	case strings.EqualFold(s, tr):
		return true, nil
	case strings.EqualFold(s, fa):
		return false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, unparsable(t, text, err, "expected %q or %q", tr, fa)
	}
	return n != 0, nil
}

func (t Boolean) Simulate(r *rand.Rand) any {
	return r.Intn(2) == 1
}

// Validate rejects tokens that differ only in case.
func (t Boolean) Validate() error {
	tr, fa := t.tokens()
	if strings.EqualFold(tr, fa) {
		return fmt.Errorf("boolean: true and false tokens are both %q", tr)
	}
	return nil
}

func (t Boolean) String() string {
	return "boolean"
}

// String is a pass-through text type.
//
// Reserved lists characters the protocol uses for framing, such as data
// separators and terminators. Encode rejects values containing any of them
// and Decode strips them from both ends of a response token.
type String struct {
	Reserved string
}

// Encode accepts a string or fmt.Stringer.
func (t String) Encode(v any) (string, error) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	default:
		return "", invalid(t, v, "not a string")
	}
	if t.Reserved != "" && strings.ContainsAny(s, t.Reserved) {
		return "", invalid(t, v, "contains reserved characters %q", t.Reserved)
	}
	return s, nil
}

func (t String) Decode(text string) (any, error) {
	if t.Reserved == "" {
		return text, nil
	}
	return strings.Trim(text, t.Reserved), nil
}

// Simulate returns a random word of SimulatedStringLength characters that
// avoids Reserved.
func (t String) Simulate(r *rand.Rand) any {
	alphabet := simulationAlphabet
	if t.Reserved != "" {
		alphabet = strings.Map(func(c rune) rune {
			if strings.ContainsRune(t.Reserved, c) {
				return -1
			}
			return c
		}, alphabet)
	}
	if alphabet == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < SimulatedStringLength; i++ {
		b.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}

func (t String) String() string {
	return "string"
}
