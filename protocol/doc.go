// Package protocol assembles and splits the text messages exchanged with an instrument.
//
// The package knows how to build program messages and how to split
// responses. It has no knowledge of which commands a device supports and
// does not care which connection (serial, GPIB, USB, socket) carries them.
// Everything it does is fully determined by a Config.
//
// # Message Structure
//
// A program message without data:
//
//	[PREFIX][HEADER][TERMINATOR]
//
// A program message with data:
//
//	[PREFIX][HEADER][HEADER_SEP][DATA][DATA_SEP][DATA]...[TERMINATOR]
//
// A response message:
//
//	[HEADER][RESP_HEADER_SEP]                 (only when EchoHeader is set)
//	[DATA][RESP_DATA_SEP][DATA]...[RESP_TERMINATOR]
//
// # Building Messages
//
//	cfg := protocol.IEC60488()
//	msg := protocol.BuildMessage(cfg, "VOLT", "1.5", "2")
//	// msg == "VOLT 1.5,2\n"
//
// # Splitting Responses
//
// ParseResponse returns exactly the expected number of tokens:
//
//	tokens, err := protocol.ParseResponse(cfg, "VOLT?", "1.5,2\n", 2)
//	// tokens == []string{"1.5", "2"}
//
// A token count mismatch is reported as a *types.ParseError wrapping an
// *ArityError, so callers can match either:
//
//	var arity *protocol.ArityError
//	if errors.As(err, &arity) {
//	    fmt.Printf("expected %d tokens, got %d\n", arity.Expected, arity.Got)
//	}
//
// # Presets
//
// The following configurations are ready to use:
//   - IEC60488: IEC 60488-2 (IEEE 488.2) formatting, the default
//   - SignalRecovery: Signal Recovery lock-in amplifier network protocol
//   - OxfordIsobus: Oxford Instruments ISOBUS with device addressing
//
// Any field can be overridden per command by copying a preset and changing
// it, since Config is a plain value.
package protocol
