// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/bureau-foundation/ticketd/lib/clock"
	"github.com/bureau-foundation/ticketd/lib/testutil"
	"github.com/bureau-foundation/ticketd/lib/ticketing"
	"github.com/bureau-foundation/ticketd/lib/wire"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// startServer boots a server on an ephemeral loopback port and
// returns a connected client socket.
func startServer(t *testing.T) (*Server, *net.UDPConn, *clock.FakeClock) {
	t.Helper()

	catalog := ticketing.NewCatalog([]ticketing.Entry{
		{Description: "Concert A", TicketCount: 3},
		{Description: "Concert B", TicketCount: 0},
	})
	fake := clock.Fake(testEpoch)
	engine := ticketing.NewEngine(catalog, 5*time.Second, fake)

	srv, err := New(Options{
		Addr:    "127.0.0.1:0",
		Catalog: catalog,
		Engine:  engine,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "server shutdown"); err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	})

	conn, err := net.DialUDP("udp", nil, srv.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("dialing server: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return srv, conn, fake
}

// exchange sends one request datagram and returns the decoded reply.
func exchange(t *testing.T, conn *net.UDPConn, request []byte) wire.Reply {
	t.Helper()

	if _, err := conn.Write(request); err != nil {
		t.Fatalf("sending request: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buffer := make([]byte, wire.MaxDatagram)
	length, err := conn.Read(buffer)
	if err != nil {
		t.Fatalf("reading reply: %v", err)
	}
	reply, err := wire.DecodeReply(buffer[:length])
	if err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	return reply
}

func TestServeEventsQuery(t *testing.T) {
	t.Parallel()

	_, conn, _ := startServer(t)
	reply := exchange(t, conn, wire.AppendEventsQuery(nil))

	events, ok := reply.(wire.EventsReply)
	if !ok {
		t.Fatalf("reply = %T, want EventsReply", reply)
	}
	want := []wire.EventInfo{
		{ID: 0, TicketCount: 3, Description: "Concert A"},
		{ID: 1, TicketCount: 0, Description: "Concert B"},
	}
	if len(events.Events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events.Events), len(want))
	}
	for i := range want {
		if events.Events[i] != want[i] {
			t.Errorf("events[%d] = %+v, want %+v", i, events.Events[i], want[i])
		}
	}
}

func TestServeReservationAndRedemption(t *testing.T) {
	t.Parallel()

	srv, conn, _ := startServer(t)

	reply := exchange(t, conn, wire.AppendReserveRequest(nil, 0, 2))
	reserve, ok := reply.(wire.ReserveReply)
	if !ok {
		t.Fatalf("reply = %T, want ReserveReply", reply)
	}
	reservation := reserve.Reservation
	if got, want := reservation.ID, uint32(ticketing.MinReservationID); got != want {
		t.Errorf("reservation ID = %d, want %d", got, want)
	}
	if got, want := reservation.ExpiresAt, uint64(testEpoch.Unix())+5; got != want {
		t.Errorf("ExpiresAt = %d, want %d", got, want)
	}

	reply = exchange(t, conn, wire.AppendTicketsRequest(nil, reservation.ID, reservation.Cookie))
	tickets, ok := reply.(wire.TicketsReply)
	if !ok {
		t.Fatalf("reply = %T, want TicketsReply", reply)
	}
	if len(tickets.Codes) != 2 {
		t.Fatalf("got %d codes, want 2", len(tickets.Codes))
	}
	if tickets.Codes[1] != tickets.Codes[0].Next() {
		t.Errorf("codes %q, %q are not consecutive", tickets.Codes[0].String(), tickets.Codes[1].String())
	}

	snapshot := srv.Stats().Snapshot()
	if snapshot.ReservationsCreated != 1 {
		t.Errorf("ReservationsCreated = %d, want 1", snapshot.ReservationsCreated)
	}
	if snapshot.TicketsIssued != 2 {
		t.Errorf("TicketsIssued = %d, want 2", snapshot.TicketsIssued)
	}
	if snapshot.RepliesSent != 2 {
		t.Errorf("RepliesSent = %d, want 2", snapshot.RepliesSent)
	}
}

func TestServeBadRequestEchoesID(t *testing.T) {
	t.Parallel()

	_, conn, _ := startServer(t)

	tests := []struct {
		name    string
		request []byte
		echo    uint32
	}{
		{name: "unknown event", request: wire.AppendReserveRequest(nil, 5, 1), echo: 5},
		{name: "zero tickets", request: wire.AppendReserveRequest(nil, 0, 0), echo: 0},
		{name: "shortage", request: wire.AppendReserveRequest(nil, 1, 1), echo: 1},
		{name: "unknown reservation", request: wire.AppendTicketsRequest(nil, 10_000_999, ticketing.Cookie{}), echo: 10_000_999},
	}
	for _, test := range tests {
		reply := exchange(t, conn, test.request)
		bad, ok := reply.(wire.BadRequest)
		if !ok {
			t.Fatalf("%s: reply = %T, want BadRequest", test.name, reply)
		}
		if bad.EchoedID != test.echo {
			t.Errorf("%s: echoed ID = %d, want %d", test.name, bad.EchoedID, test.echo)
		}
	}
}

func TestServeWrongCookieRejected(t *testing.T) {
	t.Parallel()

	_, conn, _ := startServer(t)

	reply := exchange(t, conn, wire.AppendReserveRequest(nil, 0, 1))
	reservation := reply.(wire.ReserveReply).Reservation

	wrong := reservation.Cookie
	wrong[0] ^= 0x01
	reply = exchange(t, conn, wire.AppendTicketsRequest(nil, reservation.ID, wrong))
	bad, ok := reply.(wire.BadRequest)
	if !ok {
		t.Fatalf("reply = %T, want BadRequest", reply)
	}
	if bad.EchoedID != reservation.ID {
		t.Errorf("echoed ID = %d, want %d", bad.EchoedID, reservation.ID)
	}
}

func TestServeExpiryAcrossRequests(t *testing.T) {
	t.Parallel()

	_, conn, fake := startServer(t)

	reply := exchange(t, conn, wire.AppendReserveRequest(nil, 0, 3))
	reservation := reply.(wire.ReserveReply).Reservation

	// Let the hold lapse; the next request reclaims it, so the full
	// inventory is available again.
	fake.Advance(6 * time.Second)
	reply = exchange(t, conn, wire.AppendReserveRequest(nil, 0, 3))
	if _, ok := reply.(wire.ReserveReply); !ok {
		t.Fatalf("reply after expiry = %T, want ReserveReply", reply)
	}

	// The lapsed reservation no longer redeems.
	reply = exchange(t, conn, wire.AppendTicketsRequest(nil, reservation.ID, reservation.Cookie))
	if _, ok := reply.(wire.BadRequest); !ok {
		t.Fatalf("redeeming lapsed reservation = %T, want BadRequest", reply)
	}
}

func TestServeDropsMalformedWithoutReply(t *testing.T) {
	t.Parallel()

	srv, conn, _ := startServer(t)

	// None of these can be attributed to an ID, so none get a reply.
	// The valid query afterward must receive the events reply as its
	// own answer, proving nothing was queued for the garbage.
	for _, garbage := range [][]byte{
		{},                               // empty datagram
		{99},                             // unknown tag
		{wire.MsgReserveRequest, 1, 2},   // short layout
		make([]byte, wire.MaxRequest+10), // oversized
	} {
		if _, err := conn.Write(garbage); err != nil {
			t.Fatalf("sending garbage: %v", err)
		}
	}

	reply := exchange(t, conn, wire.AppendEventsQuery(nil))
	if _, ok := reply.(wire.EventsReply); !ok {
		t.Fatalf("reply = %T, want EventsReply", reply)
	}

	snapshot := srv.Stats().Snapshot()
	if snapshot.Malformed != 4 {
		t.Errorf("Malformed = %d, want 4", snapshot.Malformed)
	}
	if snapshot.RepliesSent != 1 {
		t.Errorf("RepliesSent = %d, want 1", snapshot.RepliesSent)
	}
}
