package huddle

import (
	"github.com/pkg/errors"
)

var (
	// ErrEncodingFailed is returned when a payload cannot be serialized.
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrDecodingFailed is reported when received bytes do not decode into the requested type.
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrSendFailed is returned when the transport refuses the payload.
	ErrSendFailed = errors.New("send failed")

	// ErrNoPeersConnected is returned when there is nobody to send to.
	ErrNoPeersConnected = errors.New("no peers connected")

	// ErrInvalidDisplayName is returned for display names the transport cannot advertise.
	ErrInvalidDisplayName = errors.New("invalid display name")

	// ErrAlreadyRunning is returned when coordinator is started twice.
	ErrAlreadyRunning = errors.New("coordinator is already running")
)

// causeError binds a sentinel to the underlying cause so both errors.Is and the cause detail survive.
type causeError struct {
	kind  error
	cause error
}

func (e causeError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e causeError) Is(target error) bool {
	return target == e.kind
}

func (e causeError) Unwrap() error {
	return e.cause
}

func (e causeError) Cause() error {
	return e.cause
}

func encodingError(err error) error {
	return errors.WithStack(causeError{kind: ErrEncodingFailed, cause: err})
}

func decodingError(err error) error {
	return errors.WithStack(causeError{kind: ErrDecodingFailed, cause: err})
}

func sendError(err error) error {
	return errors.WithStack(causeError{kind: ErrSendFailed, cause: err})
}
