package protocol

// IEC 60488-2 formatting defaults.
const (
	// DefaultProgramHeaderSeparator separates the header from the program data
	DefaultProgramHeaderSeparator = " "

	// DefaultProgramDataSeparator separates consecutive program data units
	DefaultProgramDataSeparator = ","

	// DefaultResponseDataSeparator separates consecutive response data units
	DefaultResponseDataSeparator = ","

	// DefaultTerminator terminates program messages
	DefaultTerminator = "\n"

	// DefaultResponseTerminator terminates response messages
	DefaultResponseTerminator = "\n"
)

// Signal Recovery network protocol formatting.
const (
	// SignalRecoveryDataSeparator separates program data units
	SignalRecoveryDataSeparator = " "

	// SignalRecoveryTerminator terminates both program and response messages
	SignalRecoveryTerminator = "\x00"

	// SignalRecoveryStatusBytes follow every response: status, then overload
	SignalRecoveryStatusBytes = 2
)

// Oxford Instruments ISOBUS formatting.
const (
	// IsobusAddressMarker precedes the device address in a program message
	IsobusAddressMarker = "@"

	// IsobusNoEchoMarker precedes a program message the device must not answer
	IsobusNoEchoMarker = "$"

	// IsobusErrorPrefix starts the response to a rejected command
	IsobusErrorPrefix = "?"

	// IsobusTerminator terminates both program and response messages
	IsobusTerminator = "\r"
)

// Direction names used by ArityError.
const (
	// DirectionArguments marks a program data count mismatch
	DirectionArguments = "arguments"

	// DirectionResponse marks a response data count mismatch
	DirectionResponse = "response"
)

// AnyCount disables the token count check in ParseResponse.
const AnyCount = -1
