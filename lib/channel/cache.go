// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"sync"

	"github.com/ocsface/ocsface/lib/ocs"
)

// Cache stores the latest value of every channel. The zero value is
// ready to use with every channel at 0.
type Cache struct {
	mu          sync.Mutex
	expressions [ExpressionCount]float32
	eyeStates   [EyeStateCount]float32
}

// Snapshot is a point-in-time copy of every channel.
type Snapshot struct {
	Expressions [ExpressionCount]float32
	EyeStates   [EyeStateCount]float32
}

// Apply stores the first parameter of a decoded message into the
// channel its address names. Expression channels are matched before
// eye-state channels. Apply reports false, leaving the cache
// untouched, when the message has no parameters, its first parameter
// is not a float, or its address names no channel.
func (c *Cache) Apply(message ocs.Message) bool {
	if len(message.Parameters) == 0 {
		return false
	}
	value, ok := message.Parameters[0].Float()
	if !ok {
		return false
	}

	if expression, ok := LookupExpression(message.Address); ok {
		c.SetExpression(expression, value)
		return true
	}
	if state, ok := LookupEyeState(message.Address); ok {
		c.SetEyeState(state, value)
		return true
	}
	return false
}

// SetExpression stores value, clamped to [0,1], into one expression
// channel. Out-of-range channels are ignored.
func (c *Cache) SetExpression(expression Expression, value float32) {
	if expression < 0 || int(expression) >= ExpressionCount {
		return
	}
	value = clamp01(value)
	c.mu.Lock()
	c.expressions[expression] = value
	c.mu.Unlock()
}

// SetEyeState stores value, clamped to [0,1], into one eye-state
// channel. Out-of-range channels are ignored.
func (c *Cache) SetEyeState(state EyeState, value float32) {
	if state < 0 || int(state) >= EyeStateCount {
		return
	}
	value = clamp01(value)
	c.mu.Lock()
	c.eyeStates[state] = value
	c.mu.Unlock()
}

// Expressions returns a copy of every expression channel.
func (c *Cache) Expressions() [ExpressionCount]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expressions
}

// EyeStates returns a copy of every eye-state channel.
func (c *Cache) EyeStates() [EyeStateCount]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eyeStates
}

// Snapshot copies both channel sets under a single lock acquisition.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Expressions: c.expressions, EyeStates: c.eyeStates}
}

// Reset sets every channel back to 0.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.expressions = [ExpressionCount]float32{}
	c.eyeStates = [EyeStateCount]float32{}
	c.mu.Unlock()
}

// clamp01 limits v to [0,1]. NaN maps to 0.
func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
