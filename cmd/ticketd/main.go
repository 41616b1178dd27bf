// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ticketd/lib/clock"
	"github.com/bureau-foundation/ticketd/lib/config"
	"github.com/bureau-foundation/ticketd/lib/eventfile"
	"github.com/bureau-foundation/ticketd/lib/ops"
	"github.com/bureau-foundation/ticketd/lib/server"
	"github.com/bureau-foundation/ticketd/lib/ticketing"
	"github.com/bureau-foundation/ticketd/lib/version"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("ticketd", pflag.ContinueOnError)
	eventsFile := flags.StringP("events-file", "f", "", "path of the event catalog file (required)")
	port := flags.IntP("port", "p", 2022, "UDP port to listen on")
	timeout := flags.Uint64P("timeout", "t", 5, "reservation timeout in seconds")
	configPath := flags.String("config", "", "path of the YAML configuration file")
	opsSocket := flags.String("ops-socket", "", "Unix socket path for the ops status surface")
	logLevel := flags.String("log-level", "info", "log level: debug, info, warn, error")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if *showVersion {
		fmt.Printf("ticketd %s\n", version.Info())
		return nil
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Explicitly set flags override the file. Unset flags keep their
	// pflag defaults out of the picture so the file's values survive.
	if flags.Changed("events-file") {
		cfg.EventsFile = *eventsFile
	}
	if flags.Changed("port") {
		cfg.Port = *port
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = *timeout
	}
	if flags.Changed("ops-socket") {
		cfg.OpsSocket = *opsSocket
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Read raw bytes rather than using eventfile.Load so the same
	// bytes feed both the parser and the fingerprint.
	data, err := os.ReadFile(cfg.EventsFile)
	if err != nil {
		return fmt.Errorf("reading event file: %w", err)
	}
	entries, err := eventfile.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", cfg.EventsFile, err)
	}
	fingerprint := eventfile.Fingerprint(data)

	clk := clock.Real()
	catalog := ticketing.NewCatalog(entries)
	engine := ticketing.NewEngine(catalog, time.Duration(cfg.TimeoutSeconds)*time.Second, clk)

	ticketServer, err := server.New(server.Options{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Catalog: catalog,
		Engine:  engine,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The ops socket is optional; without it ticketd is UDP-only.
	opsDone := make(chan error, 1)
	if cfg.OpsSocket != "" {
		daemon := &daemonState{
			clock:          clk,
			startedAt:      clk.Now(),
			catalog:        catalog,
			stats:          ticketServer.Stats(),
			fingerprint:    fingerprint,
			listenAddr:     ticketServer.LocalAddr().String(),
			timeoutSeconds: cfg.TimeoutSeconds,
		}
		socketServer := ops.NewSocketServer(cfg.OpsSocket, logger)
		daemon.registerActions(socketServer)
		go func() {
			opsDone <- socketServer.Serve(ctx)
		}()
	} else {
		opsDone <- nil
	}

	logger.Info("ticketd running",
		"listen", ticketServer.LocalAddr().String(),
		"events", catalog.Len(),
		"timeout_seconds", cfg.TimeoutSeconds,
		"catalog_fingerprint", fingerprint,
		"ops_socket", cfg.OpsSocket,
	)

	serveErr := ticketServer.Serve(ctx)

	if err := <-opsDone; err != nil {
		logger.Error("ops socket server error", "error", err)
	}
	logger.Info("shut down")
	return serveErr
}
