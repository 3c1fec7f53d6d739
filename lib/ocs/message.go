// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package ocs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// MaxAddressLength is the longest address accepted, excluding the
	// NUL terminator.
	MaxAddressLength = 255

	// MaxParameters is the largest number of type tags accepted.
	MaxParameters = 16

	// typeTagPrefix introduces the type-tag string.
	typeTagPrefix = ','
)

var (
	ErrAddressTooLong    = errors.New("ocs: address exceeds 255 bytes")
	ErrUnterminated      = errors.New("ocs: string not NUL-terminated")
	ErrMissingTypeTags   = errors.New("ocs: missing ',' before type tags")
	ErrUnknownType       = errors.New("ocs: unknown type tag")
	ErrTooManyParameters = errors.New("ocs: more than 16 parameters")
	ErrTruncated         = errors.New("ocs: parameter data truncated")
)

// Type is a parameter type tag as it appears on the wire.
type Type byte

const (
	TypeFloat Type = 'f'
	TypeInt   Type = 'i'
)

func (t Type) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	default:
		return fmt.Sprintf("Type(%q)", byte(t))
	}
}

// Parameter is one typed 32-bit value. The raw bits are kept so that
// a parameter can be reinterpreted without loss.
type Parameter struct {
	Type Type
	bits uint32
}

// Float returns a float parameter.
func Float(value float32) Parameter {
	return Parameter{Type: TypeFloat, bits: math.Float32bits(value)}
}

// Int returns an integer parameter.
func Int(value int32) Parameter {
	return Parameter{Type: TypeInt, bits: uint32(value)}
}

// Float reports the parameter as a float32. The second result is false
// when the parameter is not tagged 'f'.
func (p Parameter) Float() (float32, bool) {
	return math.Float32frombits(p.bits), p.Type == TypeFloat
}

// Int reports the parameter as an int32. The second result is false
// when the parameter is not tagged 'i'.
func (p Parameter) Int() (int32, bool) {
	return int32(p.bits), p.Type == TypeInt
}

func (p Parameter) String() string {
	if p.Type == TypeInt {
		return fmt.Sprintf("i:%d", int32(p.bits))
	}
	return fmt.Sprintf("f:%g", math.Float32frombits(p.bits))
}

// Message is a decoded datagram.
type Message struct {
	Address    string
	Parameters []Parameter
}

// Decode parses one datagram. The returned message does not alias
// data.
func Decode(data []byte) (Message, error) {
	address, offset, err := readString(data, 0, MaxAddressLength, ErrAddressTooLong)
	if err != nil {
		return Message{}, err
	}

	if offset >= len(data) || data[offset] != typeTagPrefix {
		return Message{}, ErrMissingTypeTags
	}
	offset++

	tags, offset, err := readString(data, offset, MaxParameters, ErrTooManyParameters)
	if err != nil {
		return Message{}, err
	}

	message := Message{Address: string(address)}
	if len(tags) == 0 {
		return message, nil
	}

	message.Parameters = make([]Parameter, len(tags))
	for i, tag := range tags {
		switch Type(tag) {
		case TypeFloat, TypeInt:
		default:
			return Message{}, fmt.Errorf("%w %q", ErrUnknownType, tag)
		}
		if offset+4 > len(data) {
			return Message{}, ErrTruncated
		}
		message.Parameters[i] = Parameter{
			Type: Type(tag),
			bits: binary.BigEndian.Uint32(data[offset : offset+4]),
		}
		offset += 4
	}

	return message, nil
}

// readString reads a NUL-terminated string starting at offset and
// returns it together with the offset of the next 4-byte boundary
// after the terminator. The returned offset may lie past the end of
// data when the padding is missing; callers bounds-check before
// reading from it.
func readString(data []byte, offset, limit int, tooLong error) ([]byte, int, error) {
	for i := offset; i < len(data); i++ {
		if data[i] == 0 {
			next := i + 1
			next += (4 - next%4) % 4
			return data[offset:i], next, nil
		}
		if i-offset == limit {
			return nil, 0, tooLong
		}
	}
	return nil, 0, ErrUnterminated
}

// MarshalBinary encodes the message in wire format.
func (m Message) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(nil)
}

// AppendBinary appends the wire encoding of m to dst.
func (m Message) AppendBinary(dst []byte) ([]byte, error) {
	if len(m.Address) > MaxAddressLength {
		return dst, ErrAddressTooLong
	}
	if len(m.Parameters) > MaxParameters {
		return dst, ErrTooManyParameters
	}
	for i := 0; i < len(m.Address); i++ {
		if m.Address[i] == 0 {
			return dst, fmt.Errorf("ocs: address contains NUL at byte %d", i)
		}
	}

	start := len(dst)
	dst = append(dst, m.Address...)
	dst = appendTerminator(dst, start)

	start = len(dst)
	dst = append(dst, typeTagPrefix)
	for _, parameter := range m.Parameters {
		switch parameter.Type {
		case TypeFloat, TypeInt:
		default:
			return dst, fmt.Errorf("%w %q", ErrUnknownType, byte(parameter.Type))
		}
		dst = append(dst, byte(parameter.Type))
	}
	dst = appendTerminator(dst, start)

	for _, parameter := range m.Parameters {
		dst = binary.BigEndian.AppendUint32(dst, parameter.bits)
	}
	return dst, nil
}

// appendTerminator writes the NUL terminator and zero padding so the
// string that began at start ends on a 4-byte boundary relative to
// the message start.
func appendTerminator(dst []byte, start int) []byte {
	dst = append(dst, 0)
	for (len(dst)-start)%4 != 0 {
		dst = append(dst, 0)
	}
	return dst
}
