// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package server binds the ticketd UDP socket and runs the serve
// loop: one datagram is read, decoded, dispatched to the reservation
// engine, and answered before the next is read. There is no request
// overlap, so the engine and catalog need no locking.
//
// Codec-level failures (unknown tag, malformed layout) cannot be
// attributed to an event or reservation ID and produce no reply; the
// datagram is logged and dropped. Engine-level failures always
// produce a bad-request reply echoing the relevant ID.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/bureau-foundation/ticketd/lib/ticketing"
	"github.com/bureau-foundation/ticketd/lib/wire"
)

// Options configures a Server.
type Options struct {
	// Addr is the UDP listen address, e.g. ":2022". A port of 0
	// binds an ephemeral port (used by tests).
	Addr string

	// Catalog serves events-query requests.
	Catalog *ticketing.Catalog

	// Engine serves reservation and redemption requests.
	Engine *ticketing.Engine

	// Logger receives per-request diagnostics.
	Logger *slog.Logger
}

// Server owns the UDP socket and the request/reply cycle.
type Server struct {
	conn    *net.UDPConn
	catalog *ticketing.Catalog
	engine  *ticketing.Engine
	stats   Stats
	logger  *slog.Logger
}

// New binds the UDP socket and returns a server ready to Serve.
func New(options Options) (*Server, error) {
	addr, err := net.ResolveUDPAddr("udp", options.Addr)
	if err != nil {
		return nil, fmt.Errorf("resolving listen address %q: %w", options.Addr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("binding %q: %w", options.Addr, err)
	}
	return &Server{
		conn:    conn,
		catalog: options.Catalog,
		engine:  options.Engine,
		logger:  options.Logger,
	}, nil
}

// LocalAddr returns the bound socket address. Tests bind port 0 and
// read the assigned port from here.
func (s *Server) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Stats returns the server's request counters. The serve loop is the
// only writer; readers (the ops socket) take atomic snapshots.
func (s *Server) Stats() *Stats {
	return &s.stats
}

// Serve reads and answers datagrams until ctx is cancelled, then
// closes the socket and returns nil. Each datagram produces at most
// one reply; the loop never terminates on a per-request failure.
func (s *Server) Serve(ctx context.Context) error {
	// Unblock the read when the context is cancelled.
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	// One byte beyond the largest request so an oversized datagram is
	// detected as oversized rather than silently truncated to a
	// well-formed prefix.
	buffer := make([]byte, wire.MaxRequest+1)

	for {
		length, remote, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("reading datagram: %w", err)
		}
		s.stats.Received.Add(1)

		if length == 0 {
			s.logger.Warn("empty datagram ignored", "remote", remote)
			s.stats.Malformed.Add(1)
			continue
		}
		if length > wire.MaxRequest {
			s.logger.Warn("oversized request dropped", "remote", remote, "length", length)
			s.stats.Malformed.Add(1)
			continue
		}

		reply := s.handleDatagram(buffer[:length], remote)
		if reply == nil {
			continue
		}
		if _, err := s.conn.WriteToUDP(reply, remote); err != nil {
			s.logger.Error("sending reply failed", "remote", remote, "error", err)
			continue
		}
		s.stats.RepliesSent.Add(1)
	}
}

// handleDatagram is the request dispatcher: decode, one engine or
// catalog call, encode. A nil return means no reply is sent.
func (s *Server) handleDatagram(data []byte, remote *net.UDPAddr) []byte {
	request, err := wire.DecodeRequest(data)
	if err != nil {
		s.logger.Warn("undecodable request dropped", "remote", remote, "error", err)
		s.stats.Malformed.Add(1)
		return nil
	}

	switch request := request.(type) {
	case wire.EventsQuery:
		s.logger.Debug("events query", "remote", remote)
		s.stats.EventsServed.Add(1)
		return wire.AppendEventsReply(make([]byte, 0, wire.MaxDatagram), s.catalog.Events())

	case wire.ReserveRequest:
		reservation, err := s.engine.MakeReservation(request.EventID, request.TicketCount)
		if err != nil {
			s.rejected(remote, "make reservation", err)
			return wire.AppendBadRequest(nil, request.EventID)
		}
		s.logger.Debug("reservation created",
			"remote", remote,
			"reservation_id", reservation.ID,
			"event_id", reservation.EventID,
			"tickets", reservation.TicketCount,
		)
		s.stats.ReservationsCreated.Add(1)
		return wire.AppendReserveReply(make([]byte, 0, 67), reservation)

	case wire.TicketsRequest:
		codes, err := s.engine.GetTickets(request.ReservationID, request.Cookie)
		if err != nil {
			s.rejected(remote, "get tickets", err)
			return wire.AppendBadRequest(nil, request.ReservationID)
		}
		s.logger.Debug("tickets issued",
			"remote", remote,
			"reservation_id", request.ReservationID,
			"tickets", len(codes),
		)
		s.stats.TicketsIssued.Add(uint64(len(codes)))
		reply := make([]byte, 0, 1+4+2+len(codes)*ticketing.CodeLength)
		return wire.AppendTicketsReply(reply, request.ReservationID, codes)

	default:
		// DecodeRequest returns only the three types above.
		s.logger.Error("unhandled request type", "type", fmt.Sprintf("%T", request))
		return nil
	}
}

// rejected records an engine refusal. Protocol-taxonomy failures are
// expected client errors and log at debug; anything else (allocator
// exhaustion) is an internal condition worth an error-level record.
func (s *Server) rejected(remote *net.UDPAddr, operation string, err error) {
	s.stats.BadRequests.Add(1)
	if isProtocolError(err) {
		s.logger.Debug("request rejected", "remote", remote, "operation", operation, "error", err)
		return
	}
	s.logger.Error("request failed", "remote", remote, "operation", operation, "error", err)
}

func isProtocolError(err error) bool {
	for _, known := range []error{
		ticketing.ErrEventNotFound,
		ticketing.ErrInvalidTicketCount,
		ticketing.ErrTooManyTickets,
		ticketing.ErrTicketShortage,
		ticketing.ErrReservationNotFound,
		ticketing.ErrInvalidCookie,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
