// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package xrerror

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ocsface/ocsface/lib/xr"
)

func TestNewRecordsCallerLocation(t *testing.T) {
	err := New(InvalidParam, xr.ErrorValidationFailure, "bad binding")

	if !strings.HasSuffix(err.File, "error_test.go") {
		t.Errorf("File = %q, want error_test.go", err.File)
	}
	if !strings.HasSuffix(err.Function, "TestNewRecordsCallerLocation") {
		t.Errorf("Function = %q", err.Function)
	}
	if err.Line == 0 {
		t.Error("Line not recorded")
	}
	if len(err.Backtrace) == 0 || !strings.Contains(err.Backtrace[0], "TestNewRecordsCallerLocation") {
		t.Errorf("Backtrace does not start at the caller: %v", err.Backtrace)
	}
}

func checkHelper(result xr.Result) error {
	return Check(result, "downstream")
}

func TestCheck(t *testing.T) {
	if err := Check(xr.Success, "ok"); err != nil {
		t.Fatalf("Check(Success) = %v", err)
	}

	err := checkHelper(xr.ErrorHandleInvalid)
	var xrErr *Error
	if !errors.As(err, &xrErr) {
		t.Fatalf("Check returned %T, want *Error", err)
	}
	if xrErr.Kind != InvalidAction || xrErr.Result != xr.ErrorHandleInvalid {
		t.Errorf("got kind %v result %v", xrErr.Kind, xrErr.Result)
	}
	if xrErr.Description != "assertSuccess(downstream)" {
		t.Errorf("Description = %q", xrErr.Description)
	}
	if !strings.HasSuffix(xrErr.Function, "checkHelper") {
		t.Errorf("Function = %q, want checkHelper", xrErr.Function)
	}
}

func TestTrueAndNotNil(t *testing.T) {
	if err := True(true, xr.ErrorValidationFailure, "x"); err != nil {
		t.Errorf("True(true) = %v", err)
	}
	if ResultOf(True(false, xr.ErrorValidationFailure, "x")) != xr.ErrorValidationFailure {
		t.Error("True(false) does not carry its result")
	}

	value := 1
	if err := NotNil(&value, xr.ErrorRuntimeFailure, "value"); err != nil {
		t.Errorf("NotNil(non-nil) = %v", err)
	}
	err := NotNil[int](nil, xr.ErrorValidationFailure, "info")
	var xrErr *Error
	if !errors.As(err, &xrErr) || xrErr.Kind != NullPointer {
		t.Errorf("NotNil(nil) = %v, want a NullPointer error", err)
	}
}

func TestResultOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want xr.Result
	}{
		{"nil", nil, xr.Success},
		{"xr error", New(Assertion, xr.ErrorFeatureUnsupported, "x"), xr.ErrorFeatureUnsupported},
		{"wrapped", fmt.Errorf("outer: %w", New(InvalidParam, xr.ErrorPathInvalid, "x")), xr.ErrorPathInvalid},
		{"plain", errors.New("boom"), xr.ErrorRuntimeFailure},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ResultOf(test.err); got != test.want {
				t.Errorf("ResultOf = %v, want %v", got, test.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	err := Wrap(OpenFile, xr.ErrorFileAccessError, io.ErrUnexpectedEOF, "log file")
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("Wrap does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "cannot open file") || !strings.Contains(err.Error(), "unexpected EOF") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestReportLogsEveryField(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, nil))

	err := Newf(InvalidParam, xr.ErrorValidationFailure, "binding %d", 3)
	if result := Report(logger, "xrSuggestInteractionProfileBindings", err); result != xr.ErrorValidationFailure {
		t.Errorf("Report returned %v", result)
	}

	output := buffer.String()
	for _, want := range []string{
		"xrSuggestInteractionProfileBindings failed:",
		"Exception: invalid parameter",
		"Description: binding 3",
		"Source File:",
		"Source Line:",
		"Result: -1 (XR_ERROR_VALIDATION_FAILURE)",
		"Backtrace:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q:\n%s", want, output)
		}
	}
}

func TestReportPlainAndNil(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, nil))

	if Report(logger, "op", nil) != xr.Success {
		t.Error("Report(nil) is not Success")
	}
	if buffer.Len() != 0 {
		t.Errorf("Report(nil) logged %q", buffer.String())
	}
	if Report(logger, "op", errors.New("boom")) != xr.ErrorRuntimeFailure {
		t.Error("Report(plain) is not ErrorRuntimeFailure")
	}
	if !strings.Contains(buffer.String(), "boom") {
		t.Errorf("plain error not logged: %q", buffer.String())
	}
}
