package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds the message formatting rules shared by a group of commands.
// The zero value is not useful; start from IEC60488 or another preset.
type Config struct {
	// ProgramHeaderPrefix is prepended to every program message
	ProgramHeaderPrefix string `toml:"program_header_prefix" yaml:"program_header_prefix"`

	// ProgramHeaderSeparator separates the header from the program data
	ProgramHeaderSeparator string `toml:"program_header_separator" yaml:"program_header_separator"`

	// ProgramDataSeparator separates consecutive program data units
	ProgramDataSeparator string `toml:"program_data_separator" yaml:"program_data_separator"`

	// ResponseHeaderSeparator separates an echoed header from the response data
	ResponseHeaderSeparator string `toml:"response_header_separator" yaml:"response_header_separator"`

	// ResponseDataSeparator separates consecutive response data units.
	// An empty separator means the response is a single token.
	ResponseDataSeparator string `toml:"response_data_separator" yaml:"response_data_separator"`

	// Terminator ends every program message
	Terminator string `toml:"terminator" yaml:"terminator"`

	// ResponseTerminator ends every response message
	ResponseTerminator string `toml:"response_terminator" yaml:"response_terminator"`

	// EchoHeader indicates that the device repeats the header in its response
	EchoHeader bool `toml:"echo_header" yaml:"echo_header"`

	// EchoLength limits the echoed header to its first characters.
	// Zero means the whole header is echoed.
	EchoLength int `toml:"echo_length" yaml:"echo_length"`

	// ErrorPrefix marks a response reporting a device error, e.g. "?"
	ErrorPrefix string `toml:"error_prefix" yaml:"error_prefix"`

	// StatusBytes is the number of raw bytes following every response
	// terminator, such as a status and an overload byte
	StatusBytes int `toml:"status_bytes" yaml:"status_bytes"`

	// WriteResponse indicates that the device answers every write
	WriteResponse bool `toml:"write_response" yaml:"write_response"`
}

// IEC60488 returns the IEC 60488-2 (IEEE 488.2) formatting, e.g. "VOLT 1.5,2\n".
func IEC60488() Config {
	return Config{
		ProgramHeaderSeparator: DefaultProgramHeaderSeparator,
		ProgramDataSeparator:   DefaultProgramDataSeparator,
		ResponseDataSeparator:  DefaultResponseDataSeparator,
		Terminator:             DefaultTerminator,
		ResponseTerminator:     DefaultResponseTerminator,
	}
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return IEC60488()
}

// SignalRecovery returns the formatting used by the Signal Recovery lock-in
// amplifier network protocol. Program data are separated by spaces and both
// directions are terminated by a null character. Every command, query or
// write, is answered with a response followed by a status byte and an
// overload byte.
func SignalRecovery() Config {
	return Config{
		ProgramHeaderSeparator: DefaultProgramHeaderSeparator,
		ProgramDataSeparator:   SignalRecoveryDataSeparator,
		ResponseDataSeparator:  DefaultResponseDataSeparator,
		Terminator:             SignalRecoveryTerminator,
		ResponseTerminator:     SignalRecoveryTerminator,
		StatusBytes:            SignalRecoveryStatusBytes,
		WriteResponse:          true,
	}
}

// OxfordIsobus returns the ISOBUS formatting. A non-zero address is sent as
// "@<address>" in front of the header so several devices can share one line.
//
// The device answers every command with the first character of its header,
// followed by the data if requested. Errors are answered with "?" followed
// by the command, e.g. "?R10".
func OxfordIsobus(address int) Config {
	return Config{
		ProgramHeaderPrefix: isobusAddress(address),
		Terminator:          IsobusTerminator,
		ResponseTerminator:  IsobusTerminator,
		EchoHeader:          true,
		EchoLength:          1,
		ErrorPrefix:         IsobusErrorPrefix,
		WriteResponse:       true,
	}
}

// OxfordIsobusNoEcho returns the ISOBUS formatting with the "$" marker,
// which tells the device not to answer. It is used to send a write to all
// devices on a line at once; queries get no response.
func OxfordIsobusNoEcho(address int) Config {
	cfg := OxfordIsobus(address)
	cfg.ProgramHeaderPrefix = IsobusNoEchoMarker + cfg.ProgramHeaderPrefix
	cfg.WriteResponse = false
	return cfg
}

func isobusAddress(address int) string {
	if address == 0 {
		return ""
	}
	return IsobusAddressMarker + strconv.Itoa(address)
}

// echo returns the part of header the device repeats in its response.
func (c Config) echo(header string) string {
	if c.EchoLength > 0 && c.EchoLength < len(header) {
		header = header[:c.EchoLength]
	}
	return header + c.ResponseHeaderSeparator
}

// Validate checks that separators cannot be mistaken for terminators.
func (c Config) Validate() error {
	if c.EchoLength < 0 {
		return fmt.Errorf("echo length %d is negative", c.EchoLength)
	}
	if c.StatusBytes < 0 {
		return fmt.Errorf("status bytes %d is negative", c.StatusBytes)
	}
	if c.Terminator != "" {
		for name, sep := range map[string]string{
			"program header separator": c.ProgramHeaderSeparator,
			"program data separator":   c.ProgramDataSeparator,
		} {
			if sep != "" && strings.Contains(sep, c.Terminator) {
				return fmt.Errorf("%s %q contains the terminator %q", name, sep, c.Terminator)
			}
		}
	}
	if c.ResponseTerminator != "" {
		for name, sep := range map[string]string{
			"response header separator": c.ResponseHeaderSeparator,
			"response data separator":   c.ResponseDataSeparator,
		} {
			if sep != "" && strings.Contains(sep, c.ResponseTerminator) {
				return fmt.Errorf("%s %q contains the response terminator %q", name, sep, c.ResponseTerminator)
			}
		}
	}
	return nil
}
