// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Ticketctl is the command-line client for ticketd. The events,
// reserve, and tickets subcommands speak the UDP wire protocol; the
// status subcommand queries a ticketd ops socket over CBOR.
//
// UDP exchanges are a single request datagram answered by a single
// reply datagram, with no retries: if either datagram is lost the
// command times out and exits nonzero, and the caller decides whether
// to retry. Re-sending a reserve request would create a second
// reservation, so retrying is not something the client can do safely
// on its own.
//
// Usage:
//
//	ticketctl events  --server host:port
//	ticketctl reserve --server host:port --event N --tickets K
//	ticketctl tickets --server host:port --reservation N --cookie STR
//	ticketctl status  --socket PATH [--info]
//
// All failures, including a bad-request reply from the server, print
// an "error:" line to stderr and exit with status 1.
package main
