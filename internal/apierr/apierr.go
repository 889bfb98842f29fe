// Package apierr defines the three failure kinds a Connect call can produce
// and the classification helpers the scenario runner uses at step boundaries.
package apierr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error raised by a step.
type Kind string

const (
	KindNone       Kind = ""
	KindRequest    Kind = "request"
	KindResponse   Kind = "response"
	KindValidation Kind = "validation"
	KindUnknown    Kind = "unknown"
)

// RequestError is returned when a call could not be sent or its response
// could not be read (transport failure, malformed request, bad JSON).
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ResponseError is a well-formed error payload returned by the API.
type ResponseError struct {
	Status  int
	Message string
	Code    string
	Errors  map[string][]string
}

func (e *ResponseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "response error"
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (code %s)", msg, e.Code)
	}
	if d := formatDetails(e.Errors); d != "" {
		msg += ": " + d
	}
	return msg
}

// ValidationError is raised locally before a request is sent.
type ValidationError struct {
	Message string
	Code    string
	Errors  map[string][]string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}
	if d := formatDetails(e.Errors); d != "" {
		msg += ": " + d
	}
	return msg
}

// Add records a field-level problem.
func (e *ValidationError) Add(field, problem string) {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}
	e.Errors[field] = append(e.Errors[field], problem)
}

// OrNil returns e when at least one field problem was added.
func (e *ValidationError) OrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// KindOf reports which of the three kinds err belongs to.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var re *ResponseError
	if errors.As(err, &re) {
		return KindResponse
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var rq *RequestError
	if errors.As(err, &rq) {
		return KindRequest
	}
	return KindUnknown
}

// CodeOf returns the machine code carried by a response or validation error.
func CodeOf(err error) string {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

// DetailsOf returns the field-level details carried by err, if any.
func DetailsOf(err error) map[string][]string {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Errors
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	return nil
}

func formatDetails(m map[string][]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(m[k], "; ")))
	}
	return strings.Join(parts, ", ")
}
