// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ocsface/ocsface/lib/ingest"
	"github.com/ocsface/ocsface/lib/ocs"
	"github.com/ocsface/ocsface/lib/process"
	"github.com/ocsface/ocsface/lib/recording"
	"github.com/ocsface/ocsface/lib/version"
)

func main() {
	process.Exit(run(os.Args[1:], os.Stdout))
}

type options struct {
	host   string
	port   int
	ints   bool
	replay string
	speed  float64
}

func run(args []string, stdout io.Writer) error {
	var opts options
	var showVersion bool

	flagSet := pflag.NewFlagSet("ocs-send", pflag.ContinueOnError)
	flagSet.StringVar(&opts.host, "host", "127.0.0.1", "host the listener runs on")
	flagSet.IntVar(&opts.port, "port", ingest.DefaultPort, "UDP port the listener binds")
	flagSet.BoolVar(&opts.ints, "int", false, "send values as int32 parameters")
	flagSet.StringVar(&opts.replay, "replay", "", "replay the datagrams in this recording")
	flagSet.Float64Var(&opts.speed, "speed", 1, "replay speed multiplier")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	// Values such as -0.3 follow the address and must not parse as
	// shorthand flags.
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(stdout)
	flagSet.Usage = func() {
		fmt.Fprintf(stdout, "usage: ocs-send [flags] ADDRESS VALUE...\n       ocs-send [flags] --replay FILE\n\nflags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if showVersion {
		version.Print(stdout, "ocs-send")
		return nil
	}

	conn, err := net.Dial("udp", net.JoinHostPort(opts.host, strconv.Itoa(opts.port)))
	if err != nil {
		return fmt.Errorf("connecting to listener: %w", err)
	}
	defer conn.Close()

	if opts.replay != "" {
		if flagSet.NArg() != 0 {
			return errors.New("--replay takes no positional arguments")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return replay(ctx, conn, opts, process.NewCommandLogger(slog.LevelInfo))
	}

	message, err := parseMessage(flagSet.Args(), opts.ints)
	if err != nil {
		return err
	}
	data, err := message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", message.Address, err)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("sending %s: %w", message.Address, err)
	}
	return nil
}

// parseMessage builds a message from ADDRESS VALUE... arguments.
func parseMessage(args []string, ints bool) (ocs.Message, error) {
	if len(args) < 2 {
		return ocs.Message{}, errors.New("need an address and at least one value")
	}
	message := ocs.Message{Address: args[0]}
	for _, text := range args[1:] {
		if ints {
			value, err := strconv.ParseInt(text, 10, 32)
			if err != nil {
				return ocs.Message{}, fmt.Errorf("value %q is not an int32", text)
			}
			message.Parameters = append(message.Parameters, ocs.Int(int32(value)))
			continue
		}
		value, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return ocs.Message{}, fmt.Errorf("value %q is not a number", text)
		}
		message.Parameters = append(message.Parameters, ocs.Float(float32(value)))
	}
	if len(message.Parameters) > ocs.MaxParameters {
		return ocs.Message{}, fmt.Errorf("at most %d values, got %d", ocs.MaxParameters, len(message.Parameters))
	}
	return message, nil
}

func replay(ctx context.Context, conn net.Conn, opts options, logger *slog.Logger) error {
	reader, err := recording.Open(opts.replay)
	if err != nil {
		return err
	}
	defer reader.Close()

	header := reader.Header()
	logger.Info("replaying recording",
		"path", opts.replay,
		"source", header.Source,
		"recorded", header.StartTime().UTC(),
		"speed", opts.speed,
	)

	sent, err := recording.Replay(ctx, reader, func(payload []byte) error {
		_, err := conn.Write(payload)
		return err
	}, recording.ReplayOptions{Speed: opts.speed})
	if errors.Is(err, context.Canceled) {
		logger.Info("replay interrupted", "sent", sent)
		return nil
	}
	if err != nil {
		return fmt.Errorf("replay stopped after %d datagrams: %w", sent, err)
	}
	logger.Info("replay finished", "sent", sent)
	return nil
}
