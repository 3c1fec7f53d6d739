// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "net"

// FreeUDPPort returns a UDP port on 127.0.0.1 that was unbound at the
// time of the call. Another process may claim it before the caller
// binds; tests tolerate that rare failure.
func FreeUDPPort(t TB) int {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("reserving UDP port: %v", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

// SendUDP writes payload as one datagram to 127.0.0.1:port.
func SendUDP(t TB, port int, payload []byte) {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port})
	if err != nil {
		t.Fatalf("dialing UDP port %d: %v", port, err)
	}
	defer conn.Close()
	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("sending datagram to port %d: %v", port, err)
	}
}
