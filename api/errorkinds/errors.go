package errorkinds

import "errors"

// The different general error types.
var (
	ErrSessionStart    = errors.New("cannot start session")
	ErrSessionStop     = errors.New("cannot stop session")
	ErrSessionNotExist = errors.New("session does not exist")
	ErrMethodCall      = errors.New("cannot call method")
	ErrMethodTimeout   = errors.New("timeout on method response")

	ErrPermissionDenied      = errors.New("required permission is not granted")
	ErrNotOwner              = errors.New("access point was not started by this process")
	ErrUnsupportedOperation  = errors.New("operation is not supported by the active backend")
	ErrSubsystemUnavailable  = errors.New("access point control primitive is unavailable")
	ErrMalformedNotification = errors.New("malformed state notification")

	ErrReservationActive    = errors.New("a reservation is already active")
	ErrInvalidConfiguration = errors.New("invalid access point configuration")
	ErrDeviceNotFound       = errors.New("wireless device not found")

	ErrPropertyDataParse = errors.New("error parsing property data")

	ErrNotSupported = errors.New("this functionality is not supported")
)

// GenericError represents a standard error message.
type GenericError struct {
	// Errors stores all associated errors.
	Errors error `json:"errors,omitempty" doc:"A set of generic errors."`
}

// Error returns the formatted error as string.
func (e GenericError) Error() string {
	return e.Errors.Error()
}

// Unwrap unwraps all errors associated with this error.
func (e GenericError) Unwrap() error {
	return e.Errors
}
