package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error kinds exposed to callers that need to branch on failure class.
const (
	KindTransport         = "transport"
	KindEmptyResponse     = "empty_response"
	KindMalformedResponse = "malformed_response"
	KindIncompleteReport  = "incomplete_report"
	KindCanceled          = "canceled"
	KindInternal          = "internal"
)

// TransportError is a network failure or non-2xx response from the completion
// endpoint. Status is zero when no response was received.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Status > 0:
		return fmt.Sprintf("completion request failed (status %d): %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("completion request failed: %v", e.Err)
	default:
		return fmt.Sprintf("completion endpoint error: %d - %s", e.Status, e.Body)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string { return "no response from AI model" }

// MalformedResponseError carries the sanitized text that failed to parse. Text
// is for logs only and is never part of Error().
type MalformedResponseError struct {
	Reason string
	Text   string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return "invalid response format from AI model: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

type IncompleteReportError struct {
	Missing []string
}

func (e *IncompleteReportError) Error() string {
	return "analysis result missing required sections: " + strings.Join(e.Missing, ", ")
}

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	var (
		transport  *TransportError
		empty      *EmptyResponseError
		malformed  *MalformedResponseError
		incomplete *IncompleteReportError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &transport):
		return KindTransport
	case errors.As(err, &empty):
		return KindEmptyResponse
	case errors.As(err, &malformed):
		return KindMalformedResponse
	case errors.As(err, &incomplete):
		return KindIncompleteReport
	default:
		return KindInternal
	}
}
