package types

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Integer represents an integer value with optional inclusive bounds.
// Encode accepts every Go integer kind; Decode returns an int.
type Integer struct {
	Min *int
	Max *int
}

// Encode formats v in decimal. Values that are not integers or lie outside
// Min/Max fail with a *ValidationError.
func (t Integer) Encode(v any) (string, error) {
	n, ok := toInt(v)
	if !ok {
		return "", invalid(t, v, "not an integer")
	}
	if t.Min != nil && n < *t.Min {
		return "", invalid(t, v, "below minimum %d", *t.Min)
	}
	if t.Max != nil && n > *t.Max {
		return "", invalid(t, v, "above maximum %d", *t.Max)
	}
	return strconv.Itoa(n), nil
}

// Decode parses a decimal integer. Readings outside Min/Max are returned
// as-is since instruments may report over-range values.
func (t Integer) Decode(text string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, unparsable(t, text, err, "not a decimal integer")
	}
	return n, nil
}

// Simulate returns a uniform value within the bounds. An unbounded side
// extends SimulationSpan from the other one.
func (t Integer) Simulate(r *rand.Rand) any {
	lo, hi := span(t.Min, t.Max)
	if hi <= lo {
		return lo
	}
	width := hi - lo + 1
	if width <= 0 {
		// range wider than an int can count
		n := lo + r.Intn(math.MaxInt)
		if n > hi {
			return hi
		}
		return n
	}
	return lo + r.Intn(width)
}

// Validate reports bounds where Min exceeds Max.
func (t Integer) Validate() error {
	if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
		return fmt.Errorf("integer: min %d exceeds max %d", *t.Min, *t.Max)
	}
	return nil
}

func (t Integer) String() string {
	return "integer" + bounds(t.Min, t.Max)
}

// Float represents a floating point value with optional inclusive bounds.
// Encode accepts float and integer kinds; Decode returns a float64.
type Float struct {
	Min *float64
	Max *float64
}

// Encode formats v with the shortest representation that parses back to
// the same float64. NaN is rejected; infinities are checked against Min/Max
// like any other value.
func (t Float) Encode(v any) (string, error) {
	f, ok := toFloat(v)
	if !ok {
		return "", invalid(t, v, "not a number")
	}
	if math.IsNaN(f) {
		return "", invalid(t, v, "NaN cannot be sent")
	}
	if t.Min != nil && f < *t.Min {
		return "", invalid(t, v, "below minimum %g", *t.Min)
	}
	if t.Max != nil && f > *t.Max {
		return "", invalid(t, v, "above maximum %g", *t.Max)
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// Decode parses a decimal or exponent number, e.g. "1.5E+3". As with
// Integer, no range check is applied.
func (t Float) Decode(text string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil, unparsable(t, text, err, "not a number")
	}
	return f, nil
}

// Simulate returns a uniform value within the bounds.
func (t Float) Simulate(r *rand.Rand) any {
	lo, hi := span(t.Min, t.Max)
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}

// Validate reports bounds where Min exceeds Max.
func (t Float) Validate() error {
	if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
		return fmt.Errorf("float: min %g exceeds max %g", *t.Min, *t.Max)
	}
	return nil
}

func (t Float) String() string {
	return "float" + bounds(t.Min, t.Max)
}

// span returns the simulation range for optional bounds.
func span[T int | float64](min, max *T) (T, T) {
	switch {
	case min != nil && max != nil:
		return *min, *max
	case min != nil:
		return *min, *min + SimulationSpan
	case max != nil:
		return *max - SimulationSpan, *max
	default:
		return 0, SimulationSpan
	}
}

func bounds[T int | float64](min, max *T) string {
	if min == nil && max == nil {
		return ""
	}
	lo, hi := "", ""
	if min != nil {
		lo = fmt.Sprint(*min)
	}
	if max != nil {
		hi = fmt.Sprint(*max)
	}
	return "[" + lo + "," + hi + "]"
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n > math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	case uint:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	if n, ok := toInt(v); ok {
		return float64(n), true
	}
	return 0, false
}
