package types

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// Enum maps an ordered list of symbols onto an integer sequence.
//
// The symbol at index i is encoded as Start + i*Step. Step defaults to 1.
type Enum struct {
	Symbols []string
	Start   int
	Step    int
}

// NewEnum returns an Enum numbering symbols from zero.
func NewEnum(symbols ...string) Enum {
	return Enum{Symbols: symbols}
}

func (t Enum) step() int {
	if t.Step == 0 {
		return 1
	}
	return t.Step
}

// Encode returns Start + i*Step for the symbol at index i.
func (t Enum) Encode(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(t, v, "not a string")
	}
	for i, sym := range t.Symbols {
		if sym == s {
			return strconv.Itoa(t.Start + i*t.step()), nil
		}
	}
	return "", invalid(t, v, "not one of %v", t.Symbols)
}

// Decode maps a number back to its symbol. Numbers between two steps or
// past the last symbol fail with a *ParseError.
func (t Enum) Decode(text string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, unparsable(t, text, err, "not an enum index")
	}
	offset := n - t.Start
	if offset%t.step() != 0 {
		return nil, unparsable(t, text, nil, "index %d is off the enum step", n)
	}
	i := offset / t.step()
	if i < 0 || i >= len(t.Symbols) {
		return nil, unparsable(t, text, nil, "index %d outside of %d symbols", n, len(t.Symbols))
	}
	return t.Symbols[i], nil
}

func (t Enum) Simulate(r *rand.Rand) any {
	if len(t.Symbols) == 0 {
		return ""
	}
	return t.Symbols[r.Intn(len(t.Symbols))]
}

// Validate requires at least one symbol and no duplicates.
func (t Enum) Validate() error {
	if len(t.Symbols) == 0 {
		return fmt.Errorf("enum: no symbols declared")
	}
	return unique("enum", t.Symbols)
}

func (t Enum) String() string {
	return fmt.Sprintf("enum%v", t.Symbols)
}

// Mapping is a one to one table from values to wire tokens.
type Mapping struct {
	Values map[string]string
}

func (t Mapping) Encode(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(t, v, "not a string")
	}
	token, ok := t.Values[s]
	if !ok {
		return "", invalid(t, v, "not one of %v", t.keys())
	}
	return token, nil
}

// Decode returns the value whose token equals the trimmed text.
func (t Mapping) Decode(text string) (any, error) {
	token := strings.TrimSpace(text)
	for _, k := range t.keys() {
		if t.Values[k] == token {
			return k, nil
		}
	}
	return nil, unparsable(t, text, nil, "unknown token")
}

func (t Mapping) Simulate(r *rand.Rand) any {
	keys := t.keys()
	if len(keys) == 0 {
		return ""
	}
	return keys[r.Intn(len(keys))]
}

// Validate requires distinct tokens so Decode is unambiguous.
func (t Mapping) Validate() error {
	if len(t.Values) == 0 {
		return fmt.Errorf("mapping: no values declared")
	}
	tokens := make([]string, 0, len(t.Values))
	for _, k := range t.keys() {
		tokens = append(tokens, t.Values[k])
	}
	return unique("mapping token", tokens)
}

func (t Mapping) String() string {
	return fmt.Sprintf("mapping%v", t.keys())
}

func (t Mapping) keys() []string {
	keys := make([]string, 0, len(t.Values))
	for k := range t.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set is a finite set of values, each sent as its own token.
type Set struct {
	Values []string
}

// NewSet returns a Set of the given values.
func NewSet(values ...string) Set {
	return Set{Values: values}
}

// Encode accepts only declared values and sends them unchanged.
func (t Set) Encode(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(t, v, "not a string")
	}
	for _, x := range t.Values {
		if x == s {
			return s, nil
		}
	}
	return "", invalid(t, v, "not one of %v", t.Values)
}

func (t Set) Decode(text string) (any, error) {
	token := strings.TrimSpace(text)
	for _, x := range t.Values {
		if x == token {
			return x, nil
		}
	}
	return nil, unparsable(t, text, nil, "not one of %v", t.Values)
}

func (t Set) Simulate(r *rand.Rand) any {
	if len(t.Values) == 0 {
		return ""
	}
	return t.Values[r.Intn(len(t.Values))]
}

func (t Set) Validate() error {
	if len(t.Values) == 0 {
		return fmt.Errorf("set: no values declared")
	}
	return unique("set", t.Values)
}

func (t Set) String() string {
	return fmt.Sprintf("set%v", t.Values)
}

func unique(kind string, values []string) error {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return fmt.Errorf("%s: duplicate value %q", kind, v)
		}
		seen[v] = true
	}
	return nil
}
