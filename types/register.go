package types

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// Register represents a binary register where bits are mapped to flag names.
//
// It is sent as the decimal value of the combined bits. Decode returns a
// map with one entry per declared flag; bits without a name are dropped.
// Encode ignores names that are not declared.
type Register struct {
	Bits map[int]string
}

// Encode combines the set flags of a map[string]bool into one decimal
// value, e.g. {A: true, B: false} with bits {0: A, 1: B} is "1".
func (t Register) Encode(v any) (string, error) {
	flags, ok := v.(map[string]bool)
	if !ok {
		return "", invalid(t, v, "not a map[string]bool")
	}
	positions := make(map[string]int, len(t.Bits))
	for bit, name := range t.Bits {
		positions[name] = bit
	}
	var x int64
	for name, set := range flags {
		bit, declared := positions[name]
		if !declared || !set {
			continue
		}
		x |= 1 << uint(bit)
	}
	return strconv.FormatInt(x, 10), nil
}

// Decode parses a non-negative decimal value and reports every declared
// flag as set or unset.
func (t Register) Decode(text string) (any, error) {
	x, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return nil, unparsable(t, text, err, "not a decimal register value")
	}
	if x < 0 {
		return nil, unparsable(t, text, nil, "negative register value")
	}
	flags := make(map[string]bool, len(t.Bits))
	for bit, name := range t.Bits {
		flags[name] = x&(1<<uint(bit)) != 0
	}
	return flags, nil
}

func (t Register) Simulate(r *rand.Rand) any {
	flags := make(map[string]bool, len(t.Bits))
	for _, bit := range t.positions() {
		flags[t.Bits[bit]] = r.Intn(2) == 1
	}
	return flags
}

// Validate checks bit positions against MaxRegisterBit and rejects duplicate
// flag names.
func (t Register) Validate() error {
	if len(t.Bits) == 0 {
		return fmt.Errorf("register: no bits declared")
	}
	names := make([]string, 0, len(t.Bits))
	for _, bit := range t.positions() {
		if bit < 0 || bit > MaxRegisterBit {
			return fmt.Errorf("register: bit %d outside 0-%d", bit, MaxRegisterBit)
		}
		names = append(names, t.Bits[bit])
	}
	return unique("register flag", names)
}

func (t Register) String() string {
	parts := make([]string, 0, len(t.Bits))
	for _, bit := range t.positions() {
		parts = append(parts, fmt.Sprintf("%d:%s", bit, t.Bits[bit]))
	}
	return "register{" + strings.Join(parts, ",") + "}"
}

func (t Register) positions() []int {
	bits := make([]int, 0, len(t.Bits))
	for bit := range t.Bits {
		bits = append(bits, bit)
	}
	sort.Ints(bits)
	return bits
}
