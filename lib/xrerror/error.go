// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xrerror

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/ocsface/ocsface/lib/xr"
)

// Kind classifies an Error.
type Kind int

const (
	InvalidParam Kind = iota
	NullPointer
	InvalidAction
	FileNotFound
	FileExists
	OpenFile
	ReadFile
	WriteFile
	InvalidFileFormat
	DirectoryNotFound
	DirectoryRead
	Assertion
)

var kindNames = [...]string{
	InvalidParam:      "invalid parameter",
	NullPointer:       "null pointer",
	InvalidAction:     "invalid action",
	FileNotFound:      "file not found",
	FileExists:        "file exists",
	OpenFile:          "cannot open file",
	ReadFile:          "cannot read file",
	WriteFile:         "cannot write file",
	InvalidFileFormat: "invalid file format",
	DirectoryNotFound: "directory not found",
	DirectoryRead:     "cannot read directory",
	Assertion:         "assertion failed",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// maxBacktrace bounds the frames recorded per error.
const maxBacktrace = 25

// Error is a failure raised inside the layer.
type Error struct {
	Kind        Kind
	Result      xr.Result
	Description string

	// File, Line and Function locate the code that raised the error.
	File     string
	Line     int
	Function string

	// Backtrace holds one "function file:line" entry per frame,
	// innermost first, starting at the raising code.
	Backtrace []string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	message := fmt.Sprintf("%s: %s (%s)", e.Kind, e.Description, e.Result)
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *Error) Unwrap() error { return e.Err }

// Lines returns the diagnostic fields of e, one per line, in the order
// they are written to the log.
func (e *Error) Lines() []string {
	lines := []string{
		"Exception: " + e.Kind.String(),
		"Description: " + e.Description,
		fmt.Sprintf("Source File: %s", e.File),
		fmt.Sprintf("Source Line: %d", e.Line),
		"Function: " + e.Function,
		fmt.Sprintf("Result: %d (%s)", int32(e.Result), e.Result),
	}
	if e.Err != nil {
		lines = append(lines, "Cause: "+e.Err.Error())
	}
	for _, frame := range e.Backtrace {
		lines = append(lines, "Backtrace: "+frame)
	}
	return lines
}

// newError builds an Error located depth frames above its caller: a
// depth of 1 locates the caller of the function calling newError.
func newError(depth int, kind Kind, result xr.Result, description string, cause error) *Error {
	err := &Error{
		Kind:        kind,
		Result:      result,
		Description: description,
		Err:         cause,
	}

	var pcs [maxBacktrace]uintptr
	// Skip runtime.Callers, newError and the depth wrappers.
	n := runtime.Callers(2+depth, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	first := true
	for {
		frame, more := frames.Next()
		if first {
			err.File = frame.File
			err.Line = frame.Line
			err.Function = frame.Function
			first = false
		}
		if frame.Function != "" {
			err.Backtrace = append(err.Backtrace, fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return err
}

// New returns an Error located at the caller.
func New(kind Kind, result xr.Result, description string) *Error {
	return newError(1, kind, result, description, nil)
}

// Newf is New with a formatted description.
func Newf(kind Kind, result xr.Result, format string, args ...any) *Error {
	return newError(1, kind, result, fmt.Sprintf(format, args...), nil)
}

// Wrap returns an Error located at the caller with cause as its
// underlying error.
func Wrap(kind Kind, result xr.Result, cause error, description string) *Error {
	return newError(1, kind, result, description, cause)
}

// Check returns nil when result succeeded and otherwise an
// InvalidAction error carrying result.
func Check(result xr.Result, what string) error {
	if result.Succeeded() {
		return nil
	}
	return newError(1, InvalidAction, result, "assertSuccess("+what+")", nil)
}

// True returns nil when condition holds and otherwise an InvalidParam
// error carrying result.
func True(condition bool, result xr.Result, what string) error {
	if condition {
		return nil
	}
	return newError(1, InvalidParam, result, "assertTrue("+what+")", nil)
}

// NotNil returns nil when pointer is non-nil and otherwise a
// NullPointer error carrying result.
func NotNil[T any](pointer *T, result xr.Result, what string) error {
	if pointer != nil {
		return nil
	}
	return newError(1, NullPointer, result, "assertNotNull("+what+")", nil)
}

// ResultOf converts err to the result code an entry point returns.
func ResultOf(err error) xr.Result {
	if err == nil {
		return xr.Success
	}
	var xrErr *Error
	if errors.As(err, &xrErr) {
		return xrErr.Result
	}
	return xr.ErrorRuntimeFailure
}

// Report logs a failed operation and returns its result code. An
// *Error is logged with one record per diagnostic field; other errors
// are logged as a single record. A nil err logs nothing and returns
// xr.Success.
func Report(logger *slog.Logger, operation string, err error) xr.Result {
	if err == nil {
		return xr.Success
	}
	logger.Error(operation + " failed:")

	var xrErr *Error
	if !errors.As(err, &xrErr) {
		logger.Error(err.Error())
		return xr.ErrorRuntimeFailure
	}
	for _, line := range xrErr.Lines() {
		logger.Error(line)
	}
	return xrErr.Result
}
