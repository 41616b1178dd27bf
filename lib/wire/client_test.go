// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/ticketd/lib/ticketing"
)

func TestRequestRoundTrips(t *testing.T) {
	t.Parallel()

	t.Run("events query", func(t *testing.T) {
		t.Parallel()

		request, err := DecodeRequest(AppendEventsQuery(nil))
		if err != nil {
			t.Fatalf("DecodeRequest: %v", err)
		}
		if _, ok := request.(EventsQuery); !ok {
			t.Fatalf("round trip = %T, want EventsQuery", request)
		}
	})

	t.Run("reserve", func(t *testing.T) {
		t.Parallel()

		request, err := DecodeRequest(AppendReserveRequest(nil, 7, 1200))
		if err != nil {
			t.Fatalf("DecodeRequest: %v", err)
		}
		want := ReserveRequest{EventID: 7, TicketCount: 1200}
		if request != want {
			t.Fatalf("round trip = %v, want %v", request, want)
		}
	})

	t.Run("tickets", func(t *testing.T) {
		t.Parallel()

		cookie := ticketing.GenerateCookie(10_000_123)
		request, err := DecodeRequest(AppendTicketsRequest(nil, 10_000_123, cookie))
		if err != nil {
			t.Fatalf("DecodeRequest: %v", err)
		}
		want := TicketsRequest{ReservationID: 10_000_123, Cookie: cookie}
		if request != want {
			t.Fatalf("round trip = %v, want %v", request, want)
		}
	})
}

func TestDecodeReplyReserve(t *testing.T) {
	t.Parallel()

	reservation := ticketing.Reservation{
		ID:          ticketing.MinReservationID,
		EventID:     2,
		TicketCount: 4,
		Cookie:      ticketing.GenerateCookie(ticketing.MinReservationID),
		ExpiresAt:   1_767_225_600,
	}
	reply, err := DecodeReply(AppendReserveReply(nil, reservation))
	if err != nil {
		t.Fatalf("DecodeReply: %v", err)
	}
	reserve, ok := reply.(ReserveReply)
	if !ok {
		t.Fatalf("DecodeReply = %T, want ReserveReply", reply)
	}
	if reserve.Reservation != reservation {
		t.Fatalf("round trip = %+v, want %+v", reserve.Reservation, reservation)
	}
}

func TestDecodeReplyTickets(t *testing.T) {
	t.Parallel()

	sequencer := ticketing.NewSequencer()
	base, err := sequencer.Allocate(3)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	codes := []ticketing.Code{base, base.Next(), base.Next().Next()}

	reply, err := DecodeReply(AppendTicketsReply(nil, 10_000_007, codes))
	if err != nil {
		t.Fatalf("DecodeReply: %v", err)
	}
	tickets, ok := reply.(TicketsReply)
	if !ok {
		t.Fatalf("DecodeReply = %T, want TicketsReply", reply)
	}
	if tickets.ReservationID != 10_000_007 {
		t.Errorf("ReservationID = %d, want 10000007", tickets.ReservationID)
	}
	if len(tickets.Codes) != 3 {
		t.Fatalf("got %d codes, want 3", len(tickets.Codes))
	}
	for i := range codes {
		if tickets.Codes[i] != codes[i] {
			t.Errorf("Codes[%d] = %q, want %q", i, tickets.Codes[i].String(), codes[i].String())
		}
	}
}

func TestDecodeReplyBadRequest(t *testing.T) {
	t.Parallel()

	reply, err := DecodeReply(AppendBadRequest(nil, 5))
	if err != nil {
		t.Fatalf("DecodeReply: %v", err)
	}
	if got, want := reply, (BadRequest{EchoedID: 5}); got != want {
		t.Fatalf("DecodeReply = %v, want %v", got, want)
	}
}

func TestDecodeReplyRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		buffer []byte
		want   error
	}{
		{name: "empty", buffer: nil, want: ErrMalformedMessage},
		{name: "request tag", buffer: []byte{MsgEventsQuery}, want: ErrInvalidMessageType},
		{name: "short reserve reply", buffer: []byte{MsgReserveReply, 1, 2}, want: ErrMalformedMessage},
		{name: "reserve reply trailing byte", buffer: append(AppendReserveReply(nil, ticketing.Reservation{}), 0), want: ErrMalformedMessage},
		{name: "tickets count overruns payload", buffer: []byte{MsgTicketsReply, 0, 0, 0, 1, 0, 2, 'A'}, want: ErrMalformedMessage},
		{name: "events entry truncated", buffer: []byte{MsgEventsReply, 0, 0, 0, 1, 0, 5, 3, 'a'}, want: ErrMalformedMessage},
		{name: "bad-request short", buffer: []byte{MsgBadRequest, 1}, want: ErrMalformedMessage},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if _, err := DecodeReply(test.buffer); !errors.Is(err, test.want) {
				t.Fatalf("DecodeReply(%v) = %v, want %v", test.buffer, err, test.want)
			}
		})
	}
}
