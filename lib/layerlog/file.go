// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package layerlog

import (
	"fmt"
	"log/slog"
	"os"
)

// File is a log file and the handler writing to it.
type File struct {
	file    *os.File
	handler *Handler
}

// Open creates or truncates the file at path and returns a File whose
// handler writes to it.
func Open(path string, options *Options) (*File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return &File{file: file, handler: NewHandler(file, options)}, nil
}

// Handler returns the handler writing to the file.
func (f *File) Handler() *Handler { return f.handler }

// Logger returns a logger writing to the file.
func (f *File) Logger() *slog.Logger { return slog.New(f.handler) }

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.file.Name() }

// Close flushes and closes the file.
func (f *File) Close() error {
	if err := f.file.Sync(); err != nil {
		f.file.Close()
		return fmt.Errorf("syncing log file: %w", err)
	}
	return f.file.Close()
}
