// Package types implements the value codecs used to talk to text-oriented instruments.
//
// A Type converts a Go value into the text token an instrument expects and
// converts a response token back into a Go value. Every Type validates the
// value before it is encoded, so an invalid argument is rejected before any
// message reaches the transport.
//
// # Codec Contract
//
//	text, err := t.Encode(value)   // *ValidationError on constraint violation
//	value, err := t.Decode(text)   // *ParseError on uninterpretable text
//
// For every value v accepted by Encode, Decode(Encode(v)) returns v.
//
// # Available Types
//
//	Integer{Min, Max}      int      "42"
//	Float{Min, Max}        float64  "1.25"
//	Boolean{True, False}   bool     "1" / "0"
//	String{Reserved}       string   pass-through
//	Enum{Symbols, ...}     string   positional index, "0", "1", ...
//	Mapping{Values}        string   explicit value -> token table
//	Set{Values}            string   each value is its own token
//	Register{Bits}         map[string]bool   bit field as decimal integer
//
// Bounds are optional and inclusive:
//
//	level := types.Integer{Min: types.Bound(0), Max: types.Bound(10)}
//	level.Encode(7)  // "7"
//	level.Encode(15) // *ValidationError
//
// Enumerations map symbolic names to their position:
//
//	mode := types.NewEnum("first", "second")
//	mode.Encode("second") // "1"
//	mode.Decode("0")      // "first"
//
// Registers map bit positions to named flags:
//
//	status := types.Register{Bits: map[int]string{0: "A", 1: "B"}}
//	status.Decode("3")                                 // map[A:true B:true]
//	status.Encode(map[string]bool{"A": true, "B": false}) // "1"
//
// # Simulation
//
// Each Type can fabricate a random value from its own domain with Simulate.
// The simulated transport uses this to answer queries without hardware.
//
// Types are immutable values and may be shared by any number of commands.
package types
