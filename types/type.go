package types

import (
	"fmt"
	"math/rand"
)

// Simulation constants.
const (
	// SimulationSpan is the width of the sampled range for numeric types
	// that are unbounded on at least one side
	SimulationSpan = 1000

	// SimulatedStringLength is the length of words produced by String.Simulate
	SimulatedStringLength = 8

	// MaxRegisterBit is the highest bit position a Register may declare
	MaxRegisterBit = 62
)

// Type is the codec contract for one logical value kind.
type Type interface {
	// Encode validates v and converts it to its wire token.
	Encode(v any) (string, error)

	// Decode converts a response token into a value.
	Decode(text string) (any, error)

	// Simulate returns a random value from the type's domain.
	Simulate(r *rand.Rand) any

	fmt.Stringer
}

// Validator is implemented by types whose declaration can be malformed,
// e.g. an Integer with Min > Max or an Enum without symbols.
type Validator interface {
	Validate() error
}

// Check validates a type declaration. Types without a Validate method are
// always well formed.
func Check(t Type) error {
	if t == nil {
		return fmt.Errorf("type cannot be nil")
	}
	if v, ok := t.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Bound returns a pointer to v, for use as a Min or Max constraint.
//
//	types.Float{Min: types.Bound(0.0), Max: types.Bound(1.5)}
func Bound[T int | float64](v T) *T {
	return &v
}

// Name returns the short kind name of a type ("integer", "enum", ...).
func Name(t Type) string {
	switch t.(type) {
	case Integer, *Integer:
		return "integer"
	case Float, *Float:
		return "float"
	case Boolean, *Boolean:
		return "boolean"
	case String, *String:
		return "string"
	case Enum, *Enum:
		return "enum"
	case Mapping, *Mapping:
		return "mapping"
	case Set, *Set:
		return "set"
	case Register, *Register:
		return "register"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", t)
	}
}
