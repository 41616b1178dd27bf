// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the ticketd datagram protocol: fixed-layout
// binary requests and size-bounded binary replies. Every message
// starts with a one-byte type tag; all multi-byte integers are
// big-endian.
//
// The package is organized around the two directions of the exchange:
//
//   - protocol.go: message tags, size limits, request decode, reply encode
//   - client.go: request encode and reply decode for clients and tests
//
// Decoding never reads past the supplied buffer: requests have exact
// per-tag lengths, and replies are parsed through a bounds-checked
// cursor. Encoding an events-reply enforces the datagram ceiling by
// truncation, never by failing, so the reply always carries a valid
// prefix of the catalog.
package wire

import (
	"encoding/binary"
	"errors"
	"iter"

	"github.com/bureau-foundation/ticketd/lib/ticketing"
)

// Message type tags. Requests flow client→server, replies
// server→client; MsgBadRequest is the server's reply to any request
// the engine rejected.
const (
	MsgEventsQuery    byte = 1
	MsgEventsReply    byte = 2
	MsgReserveRequest byte = 3
	MsgReserveReply   byte = 4
	MsgTicketsRequest byte = 5
	MsgTicketsReply   byte = 6
	MsgBadRequest     byte = 255
)

const (
	// MaxDatagram is the largest reply payload: the IPv4 UDP maximum
	// of 65535 minus 20 bytes of IP header and 8 bytes of UDP header.
	MaxDatagram = 65507

	// MaxRequest is the size of the largest request (get-tickets:
	// 1 tag + 4 reservation ID + 48 cookie). Anything longer is
	// malformed before its tag is even inspected.
	MaxRequest = 53

	// Exact request lengths per tag.
	eventsQueryLength    = 1
	reserveRequestLength = 1 + 4 + 2
	ticketsRequestLength = 1 + 4 + ticketing.CookieLength

	// eventHeaderLength is the fixed part of one serialized event in
	// an events-reply: 4 ID + 2 remaining + 1 description length.
	eventHeaderLength = 4 + 2 + 1
)

// Codec-level failures. Neither can be attributed to an event or
// reservation ID, so the dispatcher drops the datagram instead of
// replying.
var (
	// ErrInvalidMessageType reports a leading tag outside the known
	// request set.
	ErrInvalidMessageType = errors.New("invalid message type")

	// ErrMalformedMessage reports a buffer whose length does not
	// match its tag's layout.
	ErrMalformedMessage = errors.New("malformed message")
)

// Request is a decoded client request: EventsQuery, ReserveRequest,
// or TicketsRequest.
type Request interface {
	isRequest()
}

// EventsQuery asks for the event listing.
type EventsQuery struct{}

// ReserveRequest asks to hold TicketCount tickets for EventID.
type ReserveRequest struct {
	EventID     uint32
	TicketCount uint16
}

// TicketsRequest redeems a reservation by ID and cookie.
type TicketsRequest struct {
	ReservationID uint32
	Cookie        ticketing.Cookie
}

func (EventsQuery) isRequest()    {}
func (ReserveRequest) isRequest() {}
func (TicketsRequest) isRequest() {}

// DecodeRequest parses one request datagram. The tag must be a known
// request type (ErrInvalidMessageType otherwise) and the buffer length
// must exactly match that tag's layout (ErrMalformedMessage
// otherwise). Reply tags arriving at the server are invalid types,
// not malformed requests.
func DecodeRequest(buffer []byte) (Request, error) {
	if len(buffer) == 0 {
		return nil, ErrMalformedMessage
	}
	switch buffer[0] {
	case MsgEventsQuery:
		if len(buffer) != eventsQueryLength {
			return nil, ErrMalformedMessage
		}
		return EventsQuery{}, nil

	case MsgReserveRequest:
		if len(buffer) != reserveRequestLength {
			return nil, ErrMalformedMessage
		}
		cursor := newReader(buffer[1:])
		request := ReserveRequest{
			EventID:     cursor.uint32(),
			TicketCount: cursor.uint16(),
		}
		if err := cursor.finish(); err != nil {
			return nil, err
		}
		return request, nil

	case MsgTicketsRequest:
		if len(buffer) != ticketsRequestLength {
			return nil, ErrMalformedMessage
		}
		cursor := newReader(buffer[1:])
		request := TicketsRequest{ReservationID: cursor.uint32()}
		cursor.bytes(request.Cookie[:])
		if err := cursor.finish(); err != nil {
			return nil, err
		}
		return request, nil

	default:
		return nil, ErrInvalidMessageType
	}
}

// AppendEventsReply appends an events-reply to dst and returns the
// extended buffer. Events are serialized one at a time in the order
// the sequence yields them; the first event that would push the reply
// past MaxDatagram stops the encoding, silently omitting it and
// everything after it. The reply is valid even when truncated.
func AppendEventsReply(dst []byte, events iter.Seq[ticketing.Event]) []byte {
	start := len(dst)
	dst = append(dst, MsgEventsReply)
	for event := range events {
		need := eventHeaderLength + len(event.Description)
		if len(dst)-start+need > MaxDatagram {
			break
		}
		dst = binary.BigEndian.AppendUint32(dst, event.ID)
		dst = binary.BigEndian.AppendUint16(dst, event.TicketCount)
		dst = append(dst, byte(len(event.Description)))
		dst = append(dst, event.Description...)
	}
	return dst
}

// AppendReserveReply appends a reservation-reply (67 bytes) to dst.
func AppendReserveReply(dst []byte, reservation ticketing.Reservation) []byte {
	dst = append(dst, MsgReserveReply)
	dst = binary.BigEndian.AppendUint32(dst, reservation.ID)
	dst = binary.BigEndian.AppendUint32(dst, reservation.EventID)
	dst = binary.BigEndian.AppendUint16(dst, reservation.TicketCount)
	dst = append(dst, reservation.Cookie[:]...)
	dst = binary.BigEndian.AppendUint64(dst, reservation.ExpiresAt)
	return dst
}

// AppendTicketsReply appends a tickets-reply to dst: the reservation
// ID, the code count, and the codes concatenated in issue order. The
// engine caps reservations at ticketing.MaxTicketCount, so the result
// always fits one datagram.
func AppendTicketsReply(dst []byte, reservationID uint32, codes []ticketing.Code) []byte {
	dst = append(dst, MsgTicketsReply)
	dst = binary.BigEndian.AppendUint32(dst, reservationID)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(codes)))
	for _, code := range codes {
		dst = append(dst, code[:]...)
	}
	return dst
}

// AppendBadRequest appends a bad-request reply echoing the event or
// reservation ID of the failed request.
func AppendBadRequest(dst []byte, echoedID uint32) []byte {
	dst = append(dst, MsgBadRequest)
	return binary.BigEndian.AppendUint32(dst, echoedID)
}

// reader is a bounds-checked cursor over a request buffer. Reads past
// the end leave the zero value and set a sticky error instead of
// panicking; finish also rejects trailing bytes so a decoded request
// accounts for the whole datagram.
type reader struct {
	buffer []byte
	offset int
	err    error
}

func newReader(buffer []byte) *reader {
	return &reader{buffer: buffer}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buffer)-r.offset < n {
		r.err = ErrMalformedMessage
		return nil
	}
	chunk := r.buffer[r.offset : r.offset+n]
	r.offset += n
	return chunk
}

func (r *reader) uint16() uint16 {
	chunk := r.take(2)
	if chunk == nil {
		return 0
	}
	return binary.BigEndian.Uint16(chunk)
}

func (r *reader) uint32() uint32 {
	chunk := r.take(4)
	if chunk == nil {
		return 0
	}
	return binary.BigEndian.Uint32(chunk)
}

func (r *reader) uint64() uint64 {
	chunk := r.take(8)
	if chunk == nil {
		return 0
	}
	return binary.BigEndian.Uint64(chunk)
}

func (r *reader) byte() byte {
	chunk := r.take(1)
	if chunk == nil {
		return 0
	}
	return chunk[0]
}

func (r *reader) bytes(dst []byte) {
	chunk := r.take(len(dst))
	if chunk != nil {
		copy(dst, chunk)
	}
}

func (r *reader) remaining() int {
	return len(r.buffer) - r.offset
}

func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.offset != len(r.buffer) {
		return ErrMalformedMessage
	}
	return nil
}
