// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ocsface/ocsface/lib/channel"
)

var (
	// ErrReleased is returned by reads through a released Handle.
	ErrReleased = errors.New("ingest: handle released")

	// ErrIdle is returned by reads while the listener has no working
	// socket.
	ErrIdle = errors.New("ingest: listener idle")
)

// Source owns a channel cache and the listener feeding it. The
// listener runs exactly while at least one Handle is held.
type Source struct {
	config ListenerConfig
	cache  channel.Cache
	refs   atomic.Int64

	// mu serializes listener start and stop so that a release racing
	// an acquire cannot leave a stopped listener in place.
	mu       sync.Mutex
	listener *Listener
}

// NewSource returns a Source that starts listeners with config. No
// socket is opened until the first Acquire.
func NewSource(config ListenerConfig) *Source {
	return &Source{config: config}
}

// Acquire takes a reference, starting the listener if this is the
// first one.
func (s *Source) Acquire() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs.Add(1) == 1 {
		s.listener = StartListener(s.config, &s.cache)
	}
	return &Handle{source: s}
}

func (s *Source) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs.Add(-1) == 0 {
		s.listener.Stop()
		s.listener = nil
	}
}

// Refs returns the number of unreleased handles.
func (s *Source) Refs() int64 { return s.refs.Load() }

// Cache returns the cache the listener writes into. Values persist
// across listener restarts.
func (s *Source) Cache() *channel.Cache { return &s.cache }

// Stats returns the running listener's counters, or zero when no
// listener is running.
func (s *Source) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return Stats{}
	}
	return s.listener.Stats()
}

// Listener returns the running listener, or nil.
func (s *Source) Listener() *Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener
}

func (s *Source) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener == nil || s.listener.Idle()
}

// Handle is one consumer's reference to a Source.
type Handle struct {
	source   *Source
	released atomic.Bool
}

func (h *Handle) check() error {
	if h.released.Load() {
		return ErrReleased
	}
	if h.source.idle() {
		return ErrIdle
	}
	return nil
}

// Expressions returns a copy of the facial-expression channels.
func (h *Handle) Expressions() ([channel.ExpressionCount]float32, error) {
	if err := h.check(); err != nil {
		return [channel.ExpressionCount]float32{}, err
	}
	return h.source.cache.Expressions(), nil
}

// EyeStates returns a copy of the eye-state channels.
func (h *Handle) EyeStates() ([channel.EyeStateCount]float32, error) {
	if err := h.check(); err != nil {
		return [channel.EyeStateCount]float32{}, err
	}
	return h.source.cache.EyeStates(), nil
}

// Release drops the reference. Releasing the last reference stops the
// listener and waits for its goroutine to exit. A second Release of
// the same handle returns ErrReleased and has no effect.
func (h *Handle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	h.source.release()
	return nil
}
