// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// exit is replaced in tests.
var exit = os.Exit

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run().
func Fatal(err error) {
	fatal(os.Stderr, err)
}

func fatal(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
	exit(1)
}

// Exit ends a command whose run() returned err. A nil error and
// pflag.ErrHelp exit 0; the help text has already been printed.
// Anything else goes to Fatal.
func Exit(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		exit(0)
		return
	}
	Fatal(err)
}
