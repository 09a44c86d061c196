// SPDX-License-Identifier: Apache-2.0

// Package errors defines GedError, the coded error shared by the loader,
// the report generator, the HTTP server and the CLI.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorCode classifies a failure. Each code maps to one HTTP status.
type ErrorCode string

const (
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT" // bad filter value, missing column
	CodeNotFound     ErrorCode = "NOT_FOUND"     // project, file or dashboard
	CodeParse        ErrorCode = "PARSE_ERROR"   // undecodable CSV export
	CodeEmptyDataset ErrorCode = "EMPTY_DATASET" // nothing left after filtering
)

var statusByCode = map[ErrorCode]int{
	CodeInvalidInput: http.StatusBadRequest,
	CodeParse:        http.StatusBadRequest,
	CodeNotFound:     http.StatusNotFound,
	CodeEmptyDataset: http.StatusUnprocessableEntity,
}

// GedError carries a code, a user-facing message, the underlying cause and
// free-form context (file, line, missing columns...).
type GedError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]any
	Recoverable bool
	StatusCode  int
}

func (e *GedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *GedError) Unwrap() error { return e.Err }

// MarshalJSON renders the error body used by the JSON API.
func (e *GedError) MarshalJSON() ([]byte, error) {
	body := struct {
		Code        ErrorCode      `json:"code"`
		Message     string         `json:"message"`
		Cause       string         `json:"error,omitempty"`
		Context     map[string]any `json:"context,omitempty"`
		Recoverable bool           `json:"recoverable"`
	}{
		Code:        e.Code,
		Message:     e.Message,
		Context:     e.Context,
		Recoverable: e.Recoverable,
	}
	if e.Err != nil {
		body.Cause = e.Err.Error()
	}
	return json.Marshal(body)
}

// LogValue groups code, message, cause and context under one slog attribute.
func (e *GedError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", string(e.Code)),
		slog.String("message", e.Message),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}
	for k, v := range e.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return slog.GroupValue(attrs...)
}

// New returns a GedError whose StatusCode follows code.
func New(code ErrorCode, msg string, cause error) *GedError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &GedError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    map[string]any{},
		StatusCode: status,
	}
}

// Newf is New without a cause and with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *GedError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// WithContext records key=value on the error and returns it.
func (e *GedError) WithContext(key string, value any) *GedError {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

// WithRecoverable marks whether retrying (a reload, a wider filter) can help.
func (e *GedError) WithRecoverable(recoverable bool) *GedError {
	e.Recoverable = recoverable
	return e
}

// RecoverableString is Recoverable as a metric label value.
func (e *GedError) RecoverableString() string {
	return fmt.Sprint(e.Recoverable)
}

// As finds the GedError in err's chain. Anything else becomes an
// INTERNAL_ERROR wrapping err; nil stays nil.
func As(err error) *GedError {
	if err == nil {
		return nil
	}
	var ge *GedError
	if stderrors.As(err, &ge) {
		return ge
	}
	return New(CodeInternal, "unexpected error", err)
}

// HasCode reports whether the first GedError in err's chain has code.
func HasCode(err error, code ErrorCode) bool {
	var ge *GedError
	return stderrors.As(err, &ge) && ge.Code == code
}
