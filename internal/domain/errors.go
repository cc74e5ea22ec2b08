package domain

import (
	"errors"
	"fmt"
)

// ValidationError is bad local input. It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed"
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ConfigurationError is a missing deployment parameter, fatal to the operation.
type ConfigurationError struct {
	Parameter string
}

func (e ConfigurationError) Error() string {
	if e.Parameter == "" {
		return "configuration error"
	}
	return fmt.Sprintf("missing configuration: %s", e.Parameter)
}

func (e ConfigurationError) Is(target error) bool {
	_, ok := target.(ConfigurationError)
	if ok {
		return true
	}
	_, ok = target.(*ConfigurationError)
	return ok
}

// SubmissionRejectedError covers user-cancelled signing and on-chain
// simulation or execution failures. They are indistinguishable beyond Message.
type SubmissionRejectedError struct {
	Operation string
	Message   string
	Err       error
}

func (e *SubmissionRejectedError) Error() string {
	if e.Operation == "" {
		return "submission rejected: " + e.Message
	}
	return fmt.Sprintf("%s rejected: %s", e.Operation, e.Message)
}

func (e *SubmissionRejectedError) Unwrap() error {
	return e.Err
}

func (e *SubmissionRejectedError) Is(target error) bool {
	_, ok := target.(*SubmissionRejectedError)
	return ok
}

// DecodeAnomalyError is a view response whose shape did not match. It is
// recovered locally and only logged.
type DecodeAnomalyError struct {
	Function string
	Reason   string
}

func (e DecodeAnomalyError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s", e.Function, e.Reason)
}

func (e DecodeAnomalyError) Is(target error) bool {
	_, ok := target.(DecodeAnomalyError)
	if ok {
		return true
	}
	_, ok = target.(*DecodeAnomalyError)
	return ok
}

var (
	ErrValidation         = ValidationError{}
	ErrConfiguration      = ConfigurationError{}
	ErrSubmissionRejected = &SubmissionRejectedError{}
	ErrDecodeAnomaly      = DecodeAnomalyError{}

	// ErrNotConnected is returned when a transaction needs the session signer
	// but no wallet has provided one.
	ErrNotConnected = errors.New("wallet not connected")
)

// UnknownFailureMessage is shown when a rejection carries no usable message.
const UnknownFailureMessage = "an unknown error occurred"
