// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"net"
	"syscall"
)

// IsExpectedCloseError reports whether err is what a blocked read
// returns after its socket has been shut down or closed from another
// goroutine: a closed connection, a connection reset or an
// unconnected-socket error from the shutdown itself. Receive loops use
// it to tell a requested stop apart from a real failure.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ECONNRESET || errno == syscall.ENOTCONN || errno == syscall.EBADF
	}
	return false
}
