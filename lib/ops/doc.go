// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ops serves ticketd's operational status surface: a CBOR
// request-response protocol on a Unix socket, one request per
// connection. Requests carry an "action" field that routes to a
// registered handler; responses are an {ok, error?, data?} envelope.
//
// The socket is deliberately unauthenticated. Its trust boundary is
// filesystem permissions on the socket path, and the registered
// actions (status, info) disclose only uptime, configuration, and
// request counters, never reservation state or cookies.
//
// [Call] is the matching client, used by ticketctl status.
package ops
