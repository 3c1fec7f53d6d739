// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ocsface/ocsface/lib/channel"
	"github.com/ocsface/ocsface/lib/netutil"
	"github.com/ocsface/ocsface/lib/ocs"
)

const (
	// DefaultPort is the well-known port OCS senders stream to.
	DefaultPort = 8888

	// DefaultReceiveBuffer is the largest datagram read in one
	// receive. Longer datagrams are truncated and then fail to decode.
	DefaultReceiveBuffer = 4096
)

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	// Address is the local IP to bind. Empty binds every interface.
	Address string

	// Port is the UDP port to bind. Zero selects DefaultPort.
	Port int

	// ReceiveBuffer is the receive buffer size in bytes. Zero selects
	// DefaultReceiveBuffer.
	ReceiveBuffer int

	// OnDatagram, when set, is called from the receive goroutine with
	// a copy of every datagram before it is decoded.
	OnDatagram func(datagram []byte)

	// Logger receives setup failures and lifecycle events. Nil
	// discards them.
	Logger *slog.Logger
}

func (c ListenerConfig) listenAddress() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Address, strconv.Itoa(port))
}

// Stats counts datagrams seen by a Listener.
type Stats struct {
	// Received is every datagram read from the socket.
	Received uint64
	// Applied is datagrams that updated a channel.
	Applied uint64
	// Dropped is datagrams that failed to decode, carried no float
	// first parameter or named no channel.
	Dropped uint64
}

// Listener receives datagrams on a UDP socket and applies them to a
// cache until stopped.
type Listener struct {
	cache      *channel.Cache
	onDatagram func([]byte)
	logger     *slog.Logger
	bufferSize int

	conn     *net.UDPConn
	idle     atomic.Bool
	stopping atomic.Bool
	stopOnce sync.Once
	done     chan struct{}

	received atomic.Uint64
	applied  atomic.Uint64
	dropped  atomic.Uint64
}

// StartListener binds the socket described by config and starts the
// receive goroutine writing into cache. StartListener does not fail:
// when the socket cannot be set up the error is logged, the listener is
// idle and Done is already closed.
func StartListener(config ListenerConfig, cache *channel.Cache) *Listener {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	bufferSize := config.ReceiveBuffer
	if bufferSize <= 0 {
		bufferSize = DefaultReceiveBuffer
	}

	listener := &Listener{
		cache:      cache,
		onDatagram: config.OnDatagram,
		logger:     logger,
		bufferSize: bufferSize,
		done:       make(chan struct{}),
	}

	address := config.listenAddress()
	conn, err := netutil.ListenUDP(context.Background(), address)
	if err != nil {
		logger.Error("OCS listener setup failed, channels will not update",
			"address", address,
			"error", err,
		)
		listener.idle.Store(true)
		close(listener.done)
		return listener
	}
	listener.conn = conn

	logger.Info("OCS listener started", "address", conn.LocalAddr().String())
	go listener.run()
	return listener
}

func (l *Listener) run() {
	defer close(l.done)

	buffer := make([]byte, l.bufferSize)
	for {
		n, _, err := l.conn.ReadFromUDP(buffer)
		if l.stopping.Load() {
			return
		}
		if err != nil {
			if netutil.IsExpectedCloseError(err) {
				return
			}
			l.logger.Error("OCS listener receive failed, channels will not update", "error", err)
			l.idle.Store(true)
			return
		}
		l.handle(buffer[:n])
	}
}

func (l *Listener) handle(datagram []byte) {
	l.received.Add(1)

	if l.onDatagram != nil {
		copied := make([]byte, len(datagram))
		copy(copied, datagram)
		l.onDatagram(copied)
	}

	message, err := ocs.Decode(datagram)
	if err != nil || !l.cache.Apply(message) {
		l.dropped.Add(1)
		return
	}
	l.applied.Add(1)
}

// Stop shuts the socket down, closes it and waits for the receive
// goroutine to exit. Stop is safe to call more than once and on an
// idle listener.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		l.stopping.Store(true)
		if l.conn != nil {
			if err := netutil.Shutdown(l.conn); err != nil {
				l.logger.Debug("OCS listener shutdown", "error", err)
			}
			l.conn.Close()
		}
		<-l.done
		if l.conn != nil {
			l.logger.Info("OCS listener stopped",
				"received", l.received.Load(),
				"applied", l.applied.Load(),
				"dropped", l.dropped.Load(),
			)
		}
	})
}

// Done is closed once the receive goroutine has exited, or at
// construction when the listener is idle.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Idle reports whether the listener failed to set up its socket or
// stopped receiving after an unexpected error.
func (l *Listener) Idle() bool { return l.idle.Load() }

// LocalAddr returns the bound socket address, or nil when idle from
// the start.
func (l *Listener) LocalAddr() net.Addr {
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// Stats returns the datagram counters.
func (l *Listener) Stats() Stats {
	return Stats{
		Received: l.received.Load(),
		Applied:  l.applied.Load(),
		Dropped:  l.dropped.Load(),
	}
}
