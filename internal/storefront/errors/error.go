// Package errors provides custom error types for storefront operations.
package errors

import (
	"errors"
	"fmt"
)

// ErrNetwork reports that a call to the remote API could not complete or returned a non-success status.
var ErrNetwork = errors.New("network error")

// ErrMalformedResponse reports that the remote API answered with a body that could not be decoded.
var ErrMalformedResponse = errors.New("malformed api response")

// ErrMalformedStorageData reports that the persisted cart could not be parsed.
var ErrMalformedStorageData = errors.New("malformed storage data")

// ErrUnknownAction reports a dispatch of an action name the store does not define.
var ErrUnknownAction = errors.New("unknown action")

// ErrUnknownGetter reports a getter name the store does not define.
var ErrUnknownGetter = errors.New("unknown getter")

// ErrUnknownMutation reports a commit of a mutation name the store does not define.
var ErrUnknownMutation = errors.New("unknown mutation")

// ErrInvalidPayload reports a missing payload or one that does not fit the named operation.
var ErrInvalidPayload = errors.New("invalid payload")

// ErrInvalidKey reports a storage key that a backend cannot hold.
var ErrInvalidKey = errors.New("invalid storage key")

// StatusError is returned when the remote API answers with a non-2xx status code.
// It matches ErrNetwork with errors.Is.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Is reports whether target is ErrNetwork.
func (e *StatusError) Is(target error) bool {
	return target == ErrNetwork
}
