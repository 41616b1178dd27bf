// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Ticketd is a single-process UDP ticket reservation server. It loads
// a fixed event catalog from a text file at startup, then answers
// three request types on one UDP socket: list the events, reserve
// tickets for an event, and redeem a reservation for its ticket codes.
//
// Requests are served strictly one at a time, so all state lives in
// plain in-memory structures with no locking. Reservations are held
// for a configurable timeout; holds that expire unredeemed return
// their tickets to the event inventory, while redeemed reservations
// keep their codes forever.
//
// # Configuration
//
// Settings come from an optional YAML file named by --config, with
// command-line flags taking precedence over the file and the file
// taking precedence over built-in defaults. The only required setting
// is the events file path (-f or events_file).
//
// # Operational surface
//
// With --ops-socket set, ticketd additionally serves a CBOR
// request-response protocol on a Unix socket for local inspection:
// the "status" action reports liveness and the "info" action reports
// catalog shape, the loaded catalog's fingerprint, and request
// counters. ticketctl is the matching client.
package main
