package client

import (
	"encoding/json"
	"errors"
	"strconv"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMalformedResponse = errors.New("malformed response")
	ErrTransport         = errors.New("transport error")
)

// TransportError is returned for network failures and for any response the
// API did not report as a success.
type TransportError struct {
	StatusCode int
	Code       string

	Response json.RawMessage

	Err error
}

func (e *TransportError) Error() string {
	msg := "crocodoc: " + e.Code

	if e.StatusCode != 0 {
		msg += " (" + strconv.Itoa(e.StatusCode) + ")"
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// MalformedResponseError is returned when a call succeeded but the decoded
// body lacks a field the operation depends on.
type MalformedResponseError struct {
	Operation string
	Code      string

	Response json.RawMessage
}

func (e *MalformedResponseError) Error() string {
	return "crocodoc: document " + e.Operation + ": " + e.Code
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}
