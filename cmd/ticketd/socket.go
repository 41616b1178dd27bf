// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	"github.com/bureau-foundation/ticketd/lib/clock"
	"github.com/bureau-foundation/ticketd/lib/ops"
	"github.com/bureau-foundation/ticketd/lib/server"
	"github.com/bureau-foundation/ticketd/lib/ticketing"
)

// daemonState is what the ops actions can see of the running server.
// Everything here is either immutable after startup or read through
// atomic snapshots, so the actions never touch the serve loop's
// single-writer state.
type daemonState struct {
	clock          clock.Clock
	startedAt      time.Time
	catalog        *ticketing.Catalog
	stats          *server.Stats
	fingerprint    string
	listenAddr     string
	timeoutSeconds uint64
}

// registerActions registers the ops socket actions. Both actions are
// unauthenticated: reachability of the socket file is the access
// control, and nothing they return identifies a reservation or cookie.
func (d *daemonState) registerActions(socketServer *ops.SocketServer) {
	socketServer.Handle("status", d.handleStatus)
	socketServer.Handle("info", d.handleInfo)
}

// statusResponse is the response to the "status" action.
type statusResponse struct {
	// UptimeSeconds is how long the server has been running.
	UptimeSeconds float64 `cbor:"uptime_seconds"`
}

// handleStatus is the liveness check: it reports uptime and nothing
// else.
func (d *daemonState) handleStatus(ctx context.Context, raw []byte) (any, error) {
	uptime := d.clock.Now().Sub(d.startedAt)
	return statusResponse{
		UptimeSeconds: uptime.Seconds(),
	}, nil
}

// infoResponse is the response to the "info" action.
type infoResponse struct {
	// UptimeSeconds is how long the server has been running.
	UptimeSeconds float64 `cbor:"uptime_seconds"`

	// Events is the number of events in the catalog.
	Events int `cbor:"events"`

	// CatalogFingerprint is the BLAKE3 hash of the loaded event file.
	CatalogFingerprint string `cbor:"catalog_fingerprint"`

	// ListenAddr is the bound UDP address.
	ListenAddr string `cbor:"listen_addr"`

	// TimeoutSeconds is the configured reservation timeout.
	TimeoutSeconds uint64 `cbor:"timeout_seconds"`

	// Stats are the lifetime request counters.
	Stats server.Snapshot `cbor:"stats"`
}

// handleInfo returns a diagnostic snapshot of the running server.
// Only immutable startup facts and atomic counters appear here; the
// engine's reservation map belongs to the serve loop alone and is
// never read from this goroutine.
func (d *daemonState) handleInfo(ctx context.Context, raw []byte) (any, error) {
	uptime := d.clock.Now().Sub(d.startedAt)
	return infoResponse{
		UptimeSeconds:      uptime.Seconds(),
		Events:             d.catalog.Len(),
		CatalogFingerprint: d.fingerprint,
		ListenAddr:         d.listenAddr,
		TimeoutSeconds:     d.timeoutSeconds,
		Stats:              d.stats.Snapshot(),
	}, nil
}
