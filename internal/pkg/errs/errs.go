/*
Package errs provides custom error types and application-level error code constants.

This file defines CustomError, the error value used for every rejected client
action: a business code for the client, a human-readable message, and the HTTP
status used when the rejection surfaces on an HTTP endpoint.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"aucroom/internal/pkg/logx"
)

// CustomError is the application error carried from the point of rejection to
// the wire. It satisfies the standard error interface.
type CustomError struct {
	// Code is the business error code (see error_codes.go).
	Code int

	// Message is the client-facing description.
	Message string

	// Status is the HTTP status used when the error is served over HTTP.
	// Websocket error frames ignore it.
	Status int
}

func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a registered code. Optional details are
// printf arguments for message templates that carry placeholders (capacity,
// length limits). An unregistered code degrades to ErrUnknown rather than
// panicking mid-handler.
func NewError(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("error code %d has no errorMap entry", code),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknown := errorMap[ErrUnknown]
		return &unknown
	}

	custom := template

	if custom.Status == 0 {
		custom.Status = http.StatusOK
	}

	if len(details) == 0 {
		return &custom
	}

	if code == ErrUnknown {
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "Handling ErrUnknown with underlying error")
		}
		return &custom
	}

	if strings.Contains(custom.Message, "%") {
		custom.Message = fmt.Sprintf(custom.Message, details...)
	} else {
		logx.Warn("Details provided for error, but message template has no formatting placeholders. Details ignored.")
	}

	return &custom
}
