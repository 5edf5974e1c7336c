package protocol

import (
	"strconv"
	"strings"

	"github.com/moffa90/go-slave/types"
)

// ParseResponse splits a response message into exactly n data tokens.
// Pass AnyCount to accept any number of tokens.
//
// Response structure:
//
//	[HEADER][RESP_HEADER_SEP]           (EchoHeader only)
//	[DATA][RESP_DATA_SEP][DATA]...[RESP_TERMINATOR]
//
// The response terminator and any trailing line ending are removed first.
// A response starting with cfg.ErrorPrefix is a *DeviceError. When
// EchoHeader is set the response must start with the header (or its first
// EchoLength characters) followed by the response header separator.
//
// Returns a *types.ParseError on header mismatch. A token count mismatch is
// a *types.ParseError wrapping an *ArityError.
func ParseResponse(cfg Config, header, response string, n int) ([]string, error) {
	body := trimTerminator(cfg, response)

	if cfg.ErrorPrefix != "" && strings.HasPrefix(body, cfg.ErrorPrefix) {
		return nil, &DeviceError{Response: body}
	}

	if cfg.EchoHeader {
		echo := cfg.echo(header)
		if !strings.HasPrefix(body, echo) {
			return nil, &types.ParseError{
				Text:   response,
				Reason: "response header mismatch, expected " + strconv.Quote(echo),
			}
		}
		body = body[len(echo):]
	}

	var tokens []string
	switch {
	case body == "" && n == 0:
		tokens = nil
	case cfg.ResponseDataSeparator == "":
		tokens = []string{body}
	default:
		tokens = strings.Split(body, cfg.ResponseDataSeparator)
	}

	if n >= 0 && len(tokens) != n {
		arity := &ArityError{Direction: DirectionResponse, Expected: n, Got: len(tokens)}
		return nil, &types.ParseError{
			Text:   response,
			Reason: arity.Error(),
			Err:    arity,
		}
	}

	return tokens, nil
}

// trimTerminator removes the response terminator and trailing line endings
// left behind by transports that read up to the terminator.
func trimTerminator(cfg Config, response string) string {
	body := response
	if cfg.ResponseTerminator != "" {
		body = strings.TrimSuffix(body, cfg.ResponseTerminator)
	}
	return strings.TrimRight(body, "\r\n")
}

