package protocol

import (
	"errors"
	"fmt"
)

// ArityError indicates a mismatch between the number of declared types and
// the number of values, either when writing arguments or when splitting a
// response.
type ArityError struct {
	// Direction is DirectionArguments or DirectionResponse
	Direction string

	// Expected is the number of declared types
	Expected int

	// Got is the number of values supplied or received
	Got int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wrong number of %s: expected %d, got %d", e.Direction, e.Expected, e.Got)
}

// IsArityError returns true if err is or wraps an ArityError.
func IsArityError(err error) bool {
	var target *ArityError
	return errors.As(err, &target)
}

// DeviceError indicates that the device rejected a command. Response is the
// reply as received, e.g. "?R10".
type DeviceError struct {
	Response string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device reported an error: %q", e.Response)
}

// IsDeviceError returns true if err is or wraps a DeviceError.
func IsDeviceError(err error) bool {
	var target *DeviceError
	return errors.As(err, &target)
}
