// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ocsface/ocsface/lib/channel"
	"github.com/ocsface/ocsface/lib/ocs"
	"github.com/ocsface/ocsface/lib/testutil"
)

func encode(t *testing.T, address string, parameters ...ocs.Parameter) []byte {
	t.Helper()
	data, err := ocs.Message{Address: address, Parameters: parameters}.MarshalBinary()
	if err != nil {
		t.Fatalf("encoding %s: %v", address, err)
	}
	return data
}

func startTestListener(t *testing.T, cache *channel.Cache, onDatagram func([]byte)) (*Listener, int) {
	t.Helper()
	port := testutil.FreeUDPPort(t)
	listener := StartListener(ListenerConfig{
		Address:    "127.0.0.1",
		Port:       port,
		OnDatagram: onDatagram,
	}, cache)
	if listener.Idle() {
		t.Fatalf("listener on port %d is idle", port)
	}
	t.Cleanup(listener.Stop)
	return listener, port
}

func TestListenerAppliesDatagrams(t *testing.T) {
	var cache channel.Cache
	datagrams := make(chan []byte, 16)
	listener, port := startTestListener(t, &cache, func(datagram []byte) { datagrams <- datagram })

	testutil.SendUDP(t, port, encode(t, "/jawOpen", ocs.Float(1.7)))
	testutil.RequireReceive(t, datagrams, 5*time.Second, "first datagram")
	testutil.SendUDP(t, port, encode(t, "/leftEyeX", ocs.Float(-0.3)))
	testutil.RequireReceive(t, datagrams, 5*time.Second, "second datagram")
	testutil.SendUDP(t, port, encode(t, "/mouthClose", ocs.Float(0.5)))
	testutil.RequireReceive(t, datagrams, 5*time.Second, "third datagram")

	// The callback runs before the cache update; stopping waits for it.
	listener.Stop()

	expressions := cache.Expressions()
	if expressions[channel.JawOpen] != 1 {
		t.Errorf("jawOpen = %v, want 1 (clamped)", expressions[channel.JawOpen])
	}
	if expressions[channel.MouthClose] != 0.5 {
		t.Errorf("mouthClose = %v, want 0.5", expressions[channel.MouthClose])
	}
	if got := cache.EyeStates()[channel.LeftEyeX]; got != 0 {
		t.Errorf("leftEyeX = %v, want 0 (clamped)", got)
	}

	stats := listener.Stats()
	if stats.Received != 3 || stats.Applied != 3 || stats.Dropped != 0 {
		t.Errorf("stats = %+v, want 3 received and applied", stats)
	}
}

func TestListenerDropsMalformedDatagrams(t *testing.T) {
	var cache channel.Cache
	datagrams := make(chan []byte, 16)
	listener, port := startTestListener(t, &cache, func(datagram []byte) { datagrams <- datagram })

	malformed := [][]byte{
		[]byte("/jawOpen"),
		{'/', 'j', 'a', 'w', 'O', 'p', 'e', 'n', 0, 0, 0, 0, ',', 's', 0, 0, 0, 0, 0, 0},
		{'/', 'j', 'a', 'w', 'O', 'p', 'e', 'n', 0, 0, 0, 0, ',', 'f', 0, 0, 0x3f},
		encode(t, "/jawOpen", ocs.Int(1)),
		encode(t, "/notAChannel", ocs.Float(0.5)),
	}
	for i, datagram := range malformed {
		testutil.SendUDP(t, port, datagram)
		testutil.RequireReceive(t, datagrams, 5*time.Second, "malformed datagram %d", i)
	}
	listener.Stop()

	if cache.Snapshot() != (channel.Snapshot{}) {
		t.Error("malformed datagrams modified the cache")
	}
	stats := listener.Stats()
	if stats.Dropped != uint64(len(malformed)) || stats.Applied != 0 {
		t.Errorf("stats = %+v, want %d dropped", stats, len(malformed))
	}
}

func TestListenerStopUnblocksReceive(t *testing.T) {
	var cache channel.Cache
	listener, _ := startTestListener(t, &cache, nil)

	stopped := make(chan struct{})
	go func() {
		listener.Stop()
		close(stopped)
	}()
	testutil.RequireClosed(t, stopped, 5*time.Second, "Stop returning")
	testutil.RequireClosed(t, listener.Done(), time.Second, "receive goroutine exit")

	// Repeated stops are no-ops.
	listener.Stop()
}

func TestListenerSetupFailureIsIdle(t *testing.T) {
	var cache channel.Cache
	listener := StartListener(ListenerConfig{Address: "127.0.0.1", Port: 70000}, &cache)
	if !listener.Idle() {
		t.Fatal("listener with an out-of-range port is not idle")
	}
	if listener.LocalAddr() != nil {
		t.Errorf("idle listener has address %v", listener.LocalAddr())
	}
	testutil.RequireClosed(t, listener.Done(), time.Second, "idle listener done")
	listener.Stop()
}

func TestSourceReferenceCounting(t *testing.T) {
	port := testutil.FreeUDPPort(t)
	source := NewSource(ListenerConfig{Address: "127.0.0.1", Port: port})

	if source.Listener() != nil {
		t.Fatal("listener running before any Acquire")
	}

	first := source.Acquire()
	listener := source.Listener()
	if listener == nil {
		t.Fatal("no listener after first Acquire")
	}
	second := source.Acquire()
	if source.Listener() != listener {
		t.Fatal("second Acquire replaced the listener")
	}
	if source.Refs() != 2 {
		t.Fatalf("Refs = %d, want 2", source.Refs())
	}

	if err := first.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	select {
	case <-listener.Done():
		t.Fatal("listener stopped while a handle is still held")
	default:
	}

	if err := second.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	// Release blocks until the goroutine exits, so Done is already closed.
	select {
	case <-listener.Done():
	default:
		t.Fatal("listener still running after last Release")
	}
	if source.Refs() != 0 || source.Listener() != nil {
		t.Fatalf("Refs = %d, listener = %v after last Release", source.Refs(), source.Listener())
	}

	// The socket is free again: a plain bind on the same port succeeds.
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port})
	if err != nil {
		t.Fatalf("port %d still bound after last Release: %v", port, err)
	}
	conn.Close()
}

func TestHandleReads(t *testing.T) {
	port := testutil.FreeUDPPort(t)
	source := NewSource(ListenerConfig{Address: "127.0.0.1", Port: port})
	handle := source.Acquire()
	defer handle.Release()

	source.Cache().SetExpression(channel.TongueOut, 0.75)
	source.Cache().SetEyeState(channel.EyesY, 0.25)

	expressions, err := handle.Expressions()
	if err != nil {
		t.Fatalf("Expressions: %v", err)
	}
	if expressions[channel.TongueOut] != 0.75 {
		t.Errorf("tongueOut = %v, want 0.75", expressions[channel.TongueOut])
	}
	eyes, err := handle.EyeStates()
	if err != nil {
		t.Fatalf("EyeStates: %v", err)
	}
	if eyes[channel.EyesY] != 0.25 {
		t.Errorf("eyesY = %v, want 0.25", eyes[channel.EyesY])
	}
}

func TestHandleAfterRelease(t *testing.T) {
	source := NewSource(ListenerConfig{Address: "127.0.0.1", Port: testutil.FreeUDPPort(t)})
	handle := source.Acquire()
	if err := handle.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if _, err := handle.Expressions(); !errors.Is(err, ErrReleased) {
		t.Errorf("Expressions after Release: %v, want ErrReleased", err)
	}
	if _, err := handle.EyeStates(); !errors.Is(err, ErrReleased) {
		t.Errorf("EyeStates after Release: %v, want ErrReleased", err)
	}
	if err := handle.Release(); !errors.Is(err, ErrReleased) {
		t.Errorf("second Release: %v, want ErrReleased", err)
	}
	if source.Refs() != 0 {
		t.Errorf("Refs = %d after double Release, want 0", source.Refs())
	}
}

func TestHandleOnIdleListener(t *testing.T) {
	source := NewSource(ListenerConfig{Address: "127.0.0.1", Port: 70000})
	handle := source.Acquire()
	defer handle.Release()

	if _, err := handle.EyeStates(); !errors.Is(err, ErrIdle) {
		t.Errorf("EyeStates on idle source: %v, want ErrIdle", err)
	}
}

func TestSourceEndToEnd(t *testing.T) {
	port := testutil.FreeUDPPort(t)
	datagrams := make(chan []byte, 4)
	source := NewSource(ListenerConfig{
		Address:    "127.0.0.1",
		Port:       port,
		OnDatagram: func(datagram []byte) { datagrams <- datagram },
	})
	handle := source.Acquire()
	defer handle.Release()

	testutil.SendUDP(t, port, encode(t, "/CHEEKPUFFLEFT", ocs.Float(0.6)))
	testutil.RequireReceive(t, datagrams, 5*time.Second, "datagram on port %d", port)

	// The cache write follows the callback on the receive goroutine.
	deadline := time.Now().Add(5 * time.Second)
	for {
		expressions, err := handle.Expressions()
		if err != nil {
			t.Fatalf("Expressions: %v", err)
		}
		if expressions[channel.CheekPuffLeft] == 0.6 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("cheekPuffLeft = %v, want 0.6", expressions[channel.CheekPuffLeft])
		}
		time.Sleep(time.Millisecond)
	}
}
