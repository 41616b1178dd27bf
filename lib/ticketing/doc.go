// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticketing implements the reservation engine at the heart of
// ticketd: a fixed catalog of events, time-limited ticket reservations
// guarded by cookies, and globally unique ticket codes.
//
// The package is organized around the reservation data flow:
//
//   - catalog.go: event inventory with decrement/increment accounting
//   - cookie.go: deterministic reservation-ID → 48-byte cookie mapping
//   - code.go: monotonic allocator of 7-character base-36 ticket codes
//   - queue.go: FIFO of pending reservations ordered by deadline
//   - engine.go: reservation lifecycle (create, redeem, reclaim)
//   - errors.go: the closed request-failure taxonomy
//
// All state is in-memory and owned by a single Engine instance. The
// engine is written for a single-writer caller (the server's serve
// loop processes one request at a time) and performs no locking.
// Expired reservations are reclaimed lazily: each MakeReservation and
// GetTickets call first returns any overdue unredeemed holds to the
// event inventory. Between calls the in-memory state may lag the wall
// clock; that is the intended policy, not a defect.
package ticketing
