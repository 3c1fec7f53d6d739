// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/ocsface/ocsface/lib/clock"
	"github.com/ocsface/ocsface/lib/ocs"
	"github.com/ocsface/ocsface/lib/recording"
)

// listen opens a UDP socket on loopback and returns it with its port.
func listen(t *testing.T) (net.PacketConn, string) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, strconv.Itoa(conn.LocalAddr().(*net.UDPAddr).Port)
}

func receive(t *testing.T, conn net.PacketConn) []byte {
	t.Helper()
	buffer := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	n, _, err := conn.ReadFrom(buffer)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	return buffer[:n]
}

func TestSendFloat(t *testing.T) {
	conn, port := listen(t)

	if err := run([]string{"--port", port, "/jawOpen", "0.75"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	message, err := ocs.Decode(receive(t, conn))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	value, ok := message.Parameters[0].Float()
	if message.Address != "/jawOpen" || !ok || value != 0.75 {
		t.Errorf("received %+v", message)
	}
}

func TestSendInts(t *testing.T) {
	conn, port := listen(t)

	if err := run([]string{"--port", port, "--int", "/frame", "42", "-7"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	message, err := ocs.Decode(receive(t, conn))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(message.Parameters) != 2 {
		t.Fatalf("parameters = %+v", message.Parameters)
	}
	first, _ := message.Parameters[0].Int()
	second, _ := message.Parameters[1].Int()
	if first != 42 || second != -7 {
		t.Errorf("values = %d, %d", first, second)
	}
}

func TestSendNegativeFloats(t *testing.T) {
	conn, port := listen(t)

	if err := run([]string{"--port", port, "/leftEyeX", "-0.3", "-1"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	message, err := ocs.Decode(receive(t, conn))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if message.Address != "/leftEyeX" || len(message.Parameters) != 2 {
		t.Fatalf("message = %+v", message)
	}
	first, ok := message.Parameters[0].Float()
	if !ok || first != float32(-0.3) {
		t.Errorf("first value = %v (float %v), want -0.3", first, ok)
	}
	second, _ := message.Parameters[1].Float()
	if second != -1 {
		t.Errorf("second value = %v, want -1", second)
	}
}

func TestParseMessageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		ints bool
		want string
	}{
		{"no arguments", nil, false, "need an address"},
		{"address only", []string{"/jawOpen"}, false, "need an address"},
		{"not a number", []string{"/jawOpen", "wide"}, false, "not a number"},
		{"not an int", []string{"/jawOpen", "0.5"}, true, "not an int32"},
		{"int overflow", []string{"/jawOpen", "4294967296"}, true, "not an int32"},
		{"too many values", append([]string{"/a"}, strings.Fields(strings.Repeat("1 ", 17))...), false, "at most 16"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parseMessage(test.args, test.ints)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("parseMessage error = %v, want %q", err, test.want)
			}
		})
	}
}

func TestHelpAndVersion(t *testing.T) {
	var output bytes.Buffer
	if err := run([]string{"--help"}, &output); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("--help = %v, want pflag.ErrHelp", err)
	}
	if !strings.Contains(output.String(), "--replay") {
		t.Errorf("help output %q missing flags", output.String())
	}

	output.Reset()
	if err := run([]string{"--version"}, &output); err != nil {
		t.Errorf("--version: %v", err)
	}
	if !strings.HasPrefix(output.String(), "ocs-send ") {
		t.Errorf("version output = %q", output.String())
	}
}

func TestReplay(t *testing.T) {
	conn, port := listen(t)

	path := filepath.Join(t.TempDir(), "capture.ocsrec")
	writer, err := recording.Create(path, clock.Fake(time.Now()), "test")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	payloads := [][]byte{[]byte("first"), []byte("second")}
	for _, payload := range payloads {
		if err := writer.Write(payload); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := run([]string{"--port", port, "--replay", path}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range payloads {
		if got := receive(t, conn); !bytes.Equal(got, want) {
			t.Errorf("received %q, want %q", got, want)
		}
	}
}

func TestReplayRejectsArguments(t *testing.T) {
	_, port := listen(t)
	err := run([]string{"--port", port, "--replay", "x.ocsrec", "/jawOpen"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no positional") {
		t.Errorf("run = %v", err)
	}
}
