// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/ticketd/lib/codec"
	"github.com/bureau-foundation/ticketd/lib/testutil"
)

type actionRequest struct {
	Action string `json:"action"`
	Name   string `json:"name,omitempty"`
}

type greeting struct {
	Message string `json:"message"`
}

// startSocketServer runs a server with the given handlers and waits
// until the socket accepts connections.
func startSocketServer(t *testing.T, handlers map[string]ActionFunc) string {
	t.Helper()

	socketPath := filepath.Join(testutil.SocketDir(t), "ops.sock")
	server := NewSocketServer(socketPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for action, handler := range handlers {
		server.Handle(action, handler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "ops server shutdown"); err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	})

	waitForSocket(t, socketPath)
	return socketPath
}

func waitForSocket(t *testing.T, socketPath string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("unix", socketPath); err == nil {
			conn.Close()
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("socket %s never became dialable", socketPath)
}

func TestSocketActionRoundTrip(t *testing.T) {
	t.Parallel()

	socketPath := startSocketServer(t, map[string]ActionFunc{
		"greet": func(ctx context.Context, raw []byte) (any, error) {
			var request actionRequest
			if err := codec.Unmarshal(raw, &request); err != nil {
				return nil, err
			}
			return greeting{Message: "hello " + request.Name}, nil
		},
	})

	response, err := Call(socketPath, actionRequest{Action: "greet", Name: "operator"}, 5*time.Second)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var result greeting
	if err := codec.Unmarshal(response.Data, &result); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if got, want := result.Message, "hello operator"; got != want {
		t.Fatalf("Message = %q, want %q", got, want)
	}
}

func TestSocketNilResultOmitsData(t *testing.T) {
	t.Parallel()

	socketPath := startSocketServer(t, map[string]ActionFunc{
		"ping": func(ctx context.Context, raw []byte) (any, error) {
			return nil, nil
		},
	})

	response, err := Call(socketPath, actionRequest{Action: "ping"}, 5*time.Second)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(response.Data) != 0 {
		t.Fatalf("Data = %v, want empty", response.Data)
	}
}

func TestSocketHandlerError(t *testing.T) {
	t.Parallel()

	socketPath := startSocketServer(t, map[string]ActionFunc{
		"fail": func(ctx context.Context, raw []byte) (any, error) {
			return nil, errors.New("engine on fire")
		},
	})

	_, err := Call(socketPath, actionRequest{Action: "fail"}, 5*time.Second)
	if err == nil {
		t.Fatal("Call succeeded, want handler error")
	}
	if got := err.Error(); !strings.Contains(got, "engine on fire") {
		t.Fatalf("error %q does not carry the handler message", got)
	}
}

func TestSocketUnknownAction(t *testing.T) {
	t.Parallel()

	socketPath := startSocketServer(t, nil)
	_, err := Call(socketPath, actionRequest{Action: "mystery"}, 5*time.Second)
	if err == nil {
		t.Fatal("Call succeeded, want unknown-action error")
	}
	if !strings.Contains(err.Error(), "mystery") {
		t.Fatalf("error %q does not name the action", err)
	}
}

func TestSocketMissingAction(t *testing.T) {
	t.Parallel()

	socketPath := startSocketServer(t, nil)
	_, err := Call(socketPath, map[string]string{"not_action": "x"}, 5*time.Second)
	if err == nil || !strings.Contains(err.Error(), "action") {
		t.Fatalf("Call = %v, want missing-action error", err)
	}
}

func TestSocketRemovesStaleSocketFile(t *testing.T) {
	t.Parallel()

	socketPath := filepath.Join(testutil.SocketDir(t), "ops.sock")
	// A leftover file from a crashed process must not block startup.
	if err := os.WriteFile(socketPath, nil, 0o600); err != nil {
		t.Fatalf("planting stale file: %v", err)
	}

	server := NewSocketServer(socketPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	waitForSocket(t, socketPath)
	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "serve exit"); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	// The socket file is cleaned up on shutdown.
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Fatalf("socket file still present after shutdown: %v", err)
	}
}

func TestSocketDuplicateHandlerPanics(t *testing.T) {
	t.Parallel()

	server := NewSocketServer("unused", slog.New(slog.NewTextHandler(io.Discard, nil)))
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Handle did not panic")
		}
	}()
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
}
