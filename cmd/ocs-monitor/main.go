// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ocsface/ocsface/lib/channel"
	"github.com/ocsface/ocsface/lib/clock"
	"github.com/ocsface/ocsface/lib/ingest"
	"github.com/ocsface/ocsface/lib/process"
	"github.com/ocsface/ocsface/lib/recording"
	"github.com/ocsface/ocsface/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	process.Exit(run(ctx, os.Args[1:], os.Stdout, clock.Real()))
}

type options struct {
	address  string
	port     int
	interval time.Duration
	count    int
	record   string
	json     bool
	verbose  bool
}

func run(ctx context.Context, args []string, stdout io.Writer, clk clock.Clock) error {
	var opts options
	var showVersion bool

	flagSet := pflag.NewFlagSet("ocs-monitor", pflag.ContinueOnError)
	flagSet.StringVar(&opts.address, "address", "", "local IP to bind (default all interfaces)")
	flagSet.IntVar(&opts.port, "port", ingest.DefaultPort, "UDP port to listen on")
	flagSet.DurationVar(&opts.interval, "interval", time.Second, "time between reports")
	flagSet.IntVar(&opts.count, "count", 0, "stop after this many reports (0 runs until interrupted)")
	flagSet.StringVar(&opts.record, "record", "", "record every datagram to this file")
	flagSet.BoolVar(&opts.json, "json", false, "print reports as JSON lines")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log listener events at debug level")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.SetOutput(stdout)

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if showVersion {
		version.Print(stdout, "ocs-monitor")
		return nil
	}
	if flagSet.NArg() != 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))
	}
	if opts.interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", opts.interval)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := process.NewCommandLogger(level)

	var writer *recording.Writer
	config := ingest.ListenerConfig{
		Address: opts.address,
		Port:    opts.port,
		Logger:  logger,
	}
	if opts.record != "" {
		var err error
		writer, err = recording.Create(opts.record, clk, net.JoinHostPort(opts.address, strconv.Itoa(opts.port)))
		if err != nil {
			return err
		}
		config.OnDatagram = func(datagram []byte) {
			if err := writer.Write(datagram); err != nil {
				logger.Warn("recording datagram failed", "error", err)
			}
		}
	}

	var cache channel.Cache
	listener := ingest.StartListener(config, &cache)
	if listener.Idle() {
		if writer != nil {
			writer.Close()
		}
		return fmt.Errorf("cannot listen on port %d", opts.port)
	}

	err := monitor(ctx, &cache, listener, clk, opts, stdout)

	listener.Stop()
	if writer != nil {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing recording: %w", closeErr)
		}
		logger.Info("recording saved", "path", opts.record, "frames", writer.Frames())
	}
	return err
}

func monitor(ctx context.Context, cache *channel.Cache, listener *ingest.Listener, clk clock.Clock, opts options, stdout io.Writer) error {
	ticker := clk.NewTicker(opts.interval)
	defer ticker.Stop()

	for reports := 0; opts.count == 0 || reports < opts.count; reports++ {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			current := newReport(now, cache.Snapshot(), listener.Stats())
			if err := current.write(stdout, opts.json); err != nil {
				return err
			}
		}
	}
	return nil
}

// report is one printed summary.
type report struct {
	Time        time.Time          `json:"time"`
	Received    uint64             `json:"received"`
	Applied     uint64             `json:"applied"`
	Dropped     uint64             `json:"dropped"`
	EyeStates   map[string]float32 `json:"eye_states"`
	Expressions map[string]float32 `json:"expressions"`
}

func newReport(now time.Time, snapshot channel.Snapshot, stats ingest.Stats) report {
	current := report{
		Time:        now.UTC(),
		Received:    stats.Received,
		Applied:     stats.Applied,
		Dropped:     stats.Dropped,
		EyeStates:   make(map[string]float32, channel.EyeStateCount),
		Expressions: make(map[string]float32),
	}
	for i, value := range snapshot.EyeStates {
		current.EyeStates[channel.EyeState(i).Address()] = value
	}
	for i, value := range snapshot.Expressions {
		if value != 0 {
			current.Expressions[channel.Expression(i).Address()] = value
		}
	}
	return current
}

func (r report) write(w io.Writer, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  received=%d applied=%d dropped=%d\n",
		r.Time.Format(time.TimeOnly), r.Received, r.Applied, r.Dropped)
	fmt.Fprintf(&b, "  eyes:")
	for _, address := range slices.Sorted(maps.Keys(r.EyeStates)) {
		fmt.Fprintf(&b, " %s=%+.3f", address, r.EyeStates[address])
	}
	b.WriteString("\n")
	if len(r.Expressions) == 0 {
		b.WriteString("  expressions: none\n")
	}
	for _, address := range slices.Sorted(maps.Keys(r.Expressions)) {
		fmt.Fprintf(&b, "  %-22s %.3f\n", address, r.Expressions[address])
	}
	_, err := io.WriteString(w, b.String())
	return err
}
