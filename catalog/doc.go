// Package catalog loads command trees from TOML and YAML files.
//
// A catalog names every command of an instrument together with its headers
// and value types, so a driver can be described without writing Go:
//
//	name = "generator"
//
//	[protocol]
//	preset = "iec60488"
//
//	[commands.idn]
//	query = "*IDN?"
//	response = [{ kind = "string" }]
//
//	[groups.source.commands.frequency]
//	query = ":SOUR:FREQ?"
//	write = ":SOUR:FREQ"
//	types = [{ kind = "float", min = 0 }]
//
// The same catalog in YAML:
//
//	name: generator
//	protocol:
//	  preset: iec60488
//	commands:
//	  idn:
//	    query: "*IDN?"
//	    response: [{kind: string}]
//	groups:
//	  source:
//	    commands:
//	      frequency:
//	        query: ":SOUR:FREQ?"
//	        write: ":SOUR:FREQ"
//	        types: [{kind: float, min: 0}]
//
// # Type Kinds
//
//	integer   min, max (whole numbers)
//	float     min, max
//	boolean   true, false (tokens, default "1" and "0")
//	string    reserved
//	enum      symbols, start, step
//	register  bits (bit position -> flag name)
//	mapping   map (value -> token)
//	set       values
//
// # Sequences
//
// Commands repeated per channel are declared as an array under sequences
// and addressed by index, e.g. "input.gain.0" or "input.gain.-1":
//
//	[[groups.input.sequences.gain]]
//	query = "GAIN1?"
//	write = "GAIN1"
//	types = [{ kind = "integer", min = 0, max = 10 }]
//
//	[[groups.input.sequences.gain]]
//	query = "GAIN2?"
//	write = "GAIN2"
//	types = [{ kind = "integer", min = 0, max = 10 }]
//
// # Protocol Sections
//
// The catalog-wide protocol section and the optional per-command protocol
// section start from a preset ("iec60488", "signal_recovery",
// "oxford_isobus" or "oxford_isobus_no_echo", the last two with an address)
// and override individual keys. A per-command section without a preset
// starts from the catalog-wide configuration.
//
// Besides the separators and terminators, a section may set echo_header,
// echo_length, error_prefix, status_bytes and write_response.
//
// # Errors
//
// Unknown keys are rejected. Problems with an entry are reported as *Error
// carrying the dotted path of the entry, e.g. "source.frequency".
package catalog
