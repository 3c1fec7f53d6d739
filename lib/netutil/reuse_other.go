// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package netutil

import (
	"context"
	"fmt"
	"net"
	"syscall"
)

// ListenUDP binds a UDP socket on address. Port reuse is not available
// on this platform.
func ListenUDP(ctx context.Context, address string) (*net.UDPConn, error) {
	var config net.ListenConfig
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

// Shutdown is a no-op on this platform; closing the socket is enough to
// wake a blocked reader.
func Shutdown(conn syscall.Conn) error {
	return nil
}
