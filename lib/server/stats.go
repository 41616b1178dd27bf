// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import "sync/atomic"

// Stats counts request outcomes over the server's lifetime. The serve
// loop is the only writer; the ops socket reads concurrent snapshots,
// which is why the fields are atomic despite the single-writer
// discipline everywhere else.
type Stats struct {
	// Received counts datagrams read from the socket, including ones
	// later dropped as malformed.
	Received atomic.Uint64

	// Malformed counts dropped datagrams: empty, oversized, unknown
	// tag, or bad layout. None of these receive a reply.
	Malformed atomic.Uint64

	// RepliesSent counts successfully written reply datagrams.
	RepliesSent atomic.Uint64

	// EventsServed counts answered events-query requests.
	EventsServed atomic.Uint64

	// ReservationsCreated counts successful make-reservation calls.
	ReservationsCreated atomic.Uint64

	// TicketsIssued counts ticket codes returned by successful
	// redemptions, including repeats of the same reservation.
	TicketsIssued atomic.Uint64

	// BadRequests counts bad-request replies (engine refusals).
	BadRequests atomic.Uint64
}

// Snapshot is a plain-value copy of Stats for serialization. Types
// consumed by ticketctl carry json tags; the CBOR codec reads them as
// fallback.
type Snapshot struct {
	Received            uint64 `json:"received"`
	Malformed           uint64 `json:"malformed"`
	RepliesSent         uint64 `json:"replies_sent"`
	EventsServed        uint64 `json:"events_served"`
	ReservationsCreated uint64 `json:"reservations_created"`
	TicketsIssued       uint64 `json:"tickets_issued"`
	BadRequests         uint64 `json:"bad_requests"`
}

// Snapshot returns an atomic-read copy of the counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Received:            s.Received.Load(),
		Malformed:           s.Malformed.Load(),
		RepliesSent:         s.RepliesSent.Load(),
		EventsServed:        s.EventsServed.Load(),
		ReservationsCreated: s.ReservationsCreated.Load(),
		TicketsIssued:       s.TicketsIssued.Load(),
		BadRequests:         s.BadRequests.Load(),
	}
}
