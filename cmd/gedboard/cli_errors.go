// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/jllopis/gedboard/pkg/errors"
)

// CLIError is a GedError plus a one-line hint telling the user what to try
// next.
type CLIError struct {
	*errors.GedError
	Hint string
}

func NewCLIError(ge *errors.GedError, hint string) *CLIError {
	return &CLIError{GedError: ge, Hint: hint}
}

func (e *CLIError) Error() string {
	if e.GedError == nil {
		return "unknown error"
	}
	if e.Hint == "" {
		return e.GedError.Error()
	}
	return e.GedError.Error() + "\n  Hint: " + e.Hint
}

func (e *CLIError) Unwrap() error {
	if e.GedError == nil {
		return nil
	}
	return e.GedError
}

// PrintError writes e to w, either as a JSON object under "error" or as
// the Error/Cause/Hint text block.
func (e *CLIError) PrintError(w io.Writer, asJSON bool) {
	ge := e.GedError
	if asJSON {
		writeJSONError(w, map[string]any{
			"code":    ge.Code,
			"message": ge.Message,
			"context": ge.Context,
			"hint":    e.Hint,
		})
		return
	}
	fmt.Fprintf(w, "Error [%s]: %s\n", FormatErrorCode(ge.Code), ge.Message)
	if ge.Err != nil {
		fmt.Fprintf(w, "  Cause: %v\n", ge.Err)
	}
	if e.Hint != "" {
		fmt.Fprintf(w, "  Hint: %s\n", e.Hint)
	}
}

func writeJSONError(w io.Writer, body any) {
	payload, _ := json.Marshal(map[string]any{"error": body})
	fmt.Fprintln(w, string(payload))
}

// NewNotFoundError reports an unknown project, dashboard or lot.
func NewNotFoundError(resource, name string) *CLIError {
	ge := errors.Newf(errors.CodeNotFound, "%s '%s' not found", resource, name).
		WithContext("resource", resource).
		WithContext("name", name)
	return NewCLIError(ge, hintFor(ge.Code))
}

// NewInvalidArgumentError reports a bad positional argument or flag value.
func NewInvalidArgumentError(arg, reason string) *CLIError {
	ge := errors.Newf(errors.CodeInvalidInput, "invalid argument: %s", reason).
		WithContext("argument", arg).
		WithContext("reason", reason)
	return NewCLIError(ge, "run 'gedboard help' for usage information")
}

// NewConfigError reports a configuration that failed to load or validate.
func NewConfigError(err error, configPath string) *CLIError {
	ge := errors.New(errors.CodeInvalidInput, "configuration error", err).
		WithContext("config_path", configPath)
	if configPath == "" {
		return NewCLIError(ge, "check the --set overrides and GEDBOARD_* variables")
	}
	return NewCLIError(ge, fmt.Sprintf("check %s for syntax errors", configPath))
}

// WrapCatalogError points the user at the data directory when scanning it
// failed.
func WrapCatalogError(err error, dir string) *CLIError {
	ge := errors.As(err).WithContext("data_dir", dir)
	switch ge.Code {
	case errors.CodeNotFound, errors.CodeInternal:
		return NewCLIError(ge, fmt.Sprintf("check that %s exists or pass --data-dir", dir))
	}
	return NewCLIError(ge, hintFor(ge.Code))
}

// WrapError returns the CLIError in err's chain, or builds one with the
// generic hint of err's code.
func WrapError(err error) *CLIError {
	var ce *CLIError
	if stderrors.As(err, &ce) {
		return ce
	}
	ge := errors.As(err)
	return NewCLIError(ge, hintFor(ge.Code))
}

var codeHints = map[errors.ErrorCode]string{
	errors.CodeNotFound:     "run 'gedboard projects' or 'gedboard dashboards' to list what is available",
	errors.CodeInvalidInput: "check the filters; categories are lot or type, periods 6m, 12m or all",
	errors.CodeParse:        "check csv.separator and csv.encoding, or run 'gedboard validate' on the file",
	errors.CodeEmptyDataset: "widen the filters or the period",
}

func hintFor(code errors.ErrorCode) string { return codeHints[code] }

// PrintSimpleError prints an uncoded error such as a cobra usage failure.
func PrintSimpleError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		writeJSONError(w, map[string]string{"code": "UNKNOWN", "message": err.Error()})
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}

func printError(w io.Writer, err error, asJSON bool) {
	var ge *errors.GedError
	if stderrors.As(err, &ge) {
		WrapError(err).PrintError(w, asJSON)
		return
	}
	PrintSimpleError(w, err, asJSON)
}

var codeNames = map[errors.ErrorCode]string{
	errors.CodeInternal:     "Internal Error",
	errors.CodeInvalidInput: "Invalid Input",
	errors.CodeNotFound:     "Not Found",
	errors.CodeParse:        "Parse Error",
	errors.CodeEmptyDataset: "Empty Dataset",
}

// FormatErrorCode names code for humans; unknown codes print as is.
func FormatErrorCode(code errors.ErrorCode) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return string(code)
}
