package protocol

import "strings"

// BuildMessage constructs a program message from a header and already
// encoded data units.
//
// Message structure:
//
//	[PREFIX][HEADER][TERMINATOR]
//	[PREFIX][HEADER][HEADER_SEP][DATA][DATA_SEP][DATA]...[TERMINATOR]
//
// Example:
//
//	protocol.BuildMessage(protocol.IEC60488(), "*IDN?")      // "*IDN?\n"
//	protocol.BuildMessage(protocol.IEC60488(), "POS", "8")   // "POS 8\n"
func BuildMessage(cfg Config, header string, data ...string) string {
	var b strings.Builder
	b.Grow(len(cfg.ProgramHeaderPrefix) + len(header) + len(cfg.Terminator) + 8*len(data))

	b.WriteString(cfg.ProgramHeaderPrefix)
	b.WriteString(header)

	if len(data) > 0 {
		b.WriteString(cfg.ProgramHeaderSeparator)
		b.WriteString(strings.Join(data, cfg.ProgramDataSeparator))
	}

	b.WriteString(cfg.Terminator)
	return b.String()
}

// JoinResponse formats response data units the way a device would send them.
// It is the inverse of ParseResponse and is used to fabricate replies.
func JoinResponse(cfg Config, header string, data ...string) string {
	var b strings.Builder
	if cfg.EchoHeader {
		b.WriteString(cfg.echo(header))
	}
	b.WriteString(strings.Join(data, cfg.ResponseDataSeparator))
	b.WriteString(cfg.ResponseTerminator)
	return b.String()
}
