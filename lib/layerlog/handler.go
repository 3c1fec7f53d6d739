// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package layerlog

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// TimeFormat is the timestamp layout at the start of each line.
const TimeFormat = "2006-01-02 15:04:05"

// Options configures a Handler.
type Options struct {
	// Level is the minimum level written. Nil writes info and above.
	Level slog.Leveler

	// Name is the initial layer name written on each line.
	Name string

	// Now returns the timestamp for a record whose time is zero. Nil
	// uses time.Now.
	Now func() time.Time
}

// output is the state shared by a Handler and every handler derived
// from it through WithAttrs and WithGroup.
type output struct {
	mu     sync.Mutex
	writer io.Writer
	name   atomic.Pointer[string]
	now    func() time.Time
}

// Handler is a slog.Handler writing one plain-text line per record.
// It is safe for concurrent use.
type Handler struct {
	out   *output
	level slog.Leveler

	// attrs holds the preformatted " key=value" text of attributes
	// added through WithAttrs.
	attrs  string
	prefix string
}

// NewHandler returns a Handler writing to writer.
func NewHandler(writer io.Writer, options *Options) *Handler {
	if options == nil {
		options = &Options{}
	}
	out := &output{writer: writer, now: options.Now}
	if out.now == nil {
		out.now = time.Now
	}
	name := options.Name
	out.name.Store(&name)

	level := options.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{out: out, level: level}
}

// SetName changes the layer name written on each line. It affects
// every handler derived from this one.
func (h *Handler) SetName(name string) {
	h.out.name.Store(&name)
}

// Name returns the layer name currently written on each line.
func (h *Handler) Name() string {
	return *h.out.name.Load()
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = h.out.now()
	}

	var line bytes.Buffer
	line.WriteByte('[')
	line.WriteString(timestamp.Format(TimeFormat))
	line.WriteString("] ")
	line.WriteString(record.Level.String())
	line.WriteByte(' ')
	if name := h.Name(); name != "" {
		line.WriteString(name)
		line.WriteString(": ")
	}
	line.WriteString(record.Message)
	line.WriteString(h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(&line, h.prefix, attr)
		return true
	})
	line.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.writer.Write(line.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var text bytes.Buffer
	text.WriteString(h.attrs)
	for _, attr := range attrs {
		appendAttr(&text, h.prefix, attr)
	}
	derived := *h
	derived.attrs = text.String()
	return &derived
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	derived := *h
	derived.prefix = h.prefix + name + "."
	return &derived
}

func appendAttr(buffer *bytes.Buffer, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			appendAttr(buffer, groupPrefix, member)
		}
		return
	}

	buffer.WriteByte(' ')
	buffer.WriteString(prefix)
	buffer.WriteString(attr.Key)
	buffer.WriteByte('=')
	buffer.WriteString(formatValue(attr.Value))
}

func formatValue(value slog.Value) string {
	var text string
	switch value.Kind() {
	case slog.KindTime:
		text = value.Time().Format(time.RFC3339Nano)
	default:
		text = value.String()
	}
	if text == "" || strings.ContainsAny(text, " \t\n\"=") {
		return strconv.Quote(text)
	}
	return text
}
