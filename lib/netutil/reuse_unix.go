// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package netutil

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// ListenUDP binds a UDP socket on address with address and port reuse
// enabled.
func ListenUDP(ctx context.Context, address string) (*net.UDPConn, error) {
	config := net.ListenConfig{Control: setReuse}
	packetConn, err := config.ListenPacket(ctx, "udp", address)
	if err != nil {
		return nil, err
	}
	conn, ok := packetConn.(*net.UDPConn)
	if !ok {
		packetConn.Close()
		return nil, fmt.Errorf("listen %s: unexpected connection type %T", address, packetConn)
	}
	return conn, nil
}

func setReuse(network, address string, raw syscall.RawConn) error {
	var optionErr error
	err := raw.Control(func(fd uintptr) {
		if optionErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); optionErr != nil {
			optionErr = fmt.Errorf("setting SO_REUSEADDR: %w", optionErr)
			return
		}
		if optionErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); optionErr != nil {
			optionErr = fmt.Errorf("setting SO_REUSEPORT: %w", optionErr)
		}
	})
	if err != nil {
		return err
	}
	return optionErr
}

// Shutdown disables further sends and receives on conn. A goroutine
// blocked reading from conn returns once Shutdown completes. ENOTCONN,
// which Linux reports for unconnected datagram sockets while still
// waking readers, is not an error.
func Shutdown(conn syscall.Conn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var shutdownErr error
	err = raw.Control(func(fd uintptr) {
		shutdownErr = unix.Shutdown(int(fd), unix.SHUT_RDWR)
	})
	if err != nil {
		return err
	}
	if shutdownErr == unix.ENOTCONN {
		return nil
	}
	return shutdownErr
}
