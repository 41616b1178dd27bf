// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"

	"github.com/bureau-foundation/ticketd/lib/ticketing"
)

// Client-side encoding and decoding. ticketctl and the test suites
// speak the protocol through these helpers; the server never calls
// them.

// AppendEventsQuery appends an events-query request to dst.
func AppendEventsQuery(dst []byte) []byte {
	return append(dst, MsgEventsQuery)
}

// AppendReserveRequest appends a make-reservation request to dst.
func AppendReserveRequest(dst []byte, eventID uint32, ticketCount uint16) []byte {
	dst = append(dst, MsgReserveRequest)
	dst = binary.BigEndian.AppendUint32(dst, eventID)
	return binary.BigEndian.AppendUint16(dst, ticketCount)
}

// AppendTicketsRequest appends a get-tickets request to dst.
func AppendTicketsRequest(dst []byte, reservationID uint32, cookie ticketing.Cookie) []byte {
	dst = append(dst, MsgTicketsRequest)
	dst = binary.BigEndian.AppendUint32(dst, reservationID)
	return append(dst, cookie[:]...)
}

// Reply is a decoded server reply: EventsReply, ReserveReply,
// TicketsReply, or BadRequest.
type Reply interface {
	isReply()
}

// EventInfo is one event as listed in an events-reply.
type EventInfo struct {
	ID          uint32
	TicketCount uint16
	Description string
}

// EventsReply lists events in catalog order. The list may be a
// truncated prefix of the catalog when the full listing would not fit
// one datagram.
type EventsReply struct {
	Events []EventInfo
}

// ReserveReply carries the created reservation.
type ReserveReply struct {
	Reservation ticketing.Reservation
}

// TicketsReply carries the redeemed ticket codes in issue order.
type TicketsReply struct {
	ReservationID uint32
	Codes         []ticketing.Code
}

// BadRequest reports a rejected request, echoing the event or
// reservation ID it named.
type BadRequest struct {
	EchoedID uint32
}

func (EventsReply) isReply()  {}
func (ReserveReply) isReply() {}
func (TicketsReply) isReply() {}
func (BadRequest) isReply()   {}

// DecodeReply parses one reply datagram. Unknown tags fail with
// ErrInvalidMessageType; layout violations (short buffers, trailing
// bytes, counts that disagree with the payload size) fail with
// ErrMalformedMessage.
func DecodeReply(buffer []byte) (Reply, error) {
	if len(buffer) == 0 {
		return nil, ErrMalformedMessage
	}
	cursor := newReader(buffer[1:])
	switch buffer[0] {
	case MsgEventsReply:
		reply := EventsReply{}
		for cursor.remaining() > 0 {
			event := EventInfo{
				ID:          cursor.uint32(),
				TicketCount: cursor.uint16(),
			}
			description := make([]byte, cursor.byte())
			cursor.bytes(description)
			event.Description = string(description)
			if err := cursor.err; err != nil {
				return nil, err
			}
			reply.Events = append(reply.Events, event)
		}
		return reply, nil

	case MsgReserveReply:
		reply := ReserveReply{Reservation: ticketing.Reservation{
			ID:          cursor.uint32(),
			EventID:     cursor.uint32(),
			TicketCount: cursor.uint16(),
		}}
		cursor.bytes(reply.Reservation.Cookie[:])
		reply.Reservation.ExpiresAt = cursor.uint64()
		if err := cursor.finish(); err != nil {
			return nil, err
		}
		return reply, nil

	case MsgTicketsReply:
		reply := TicketsReply{ReservationID: cursor.uint32()}
		count := cursor.uint16()
		if cursor.err != nil {
			return nil, cursor.err
		}
		reply.Codes = make([]ticketing.Code, count)
		for i := range reply.Codes {
			cursor.bytes(reply.Codes[i][:])
		}
		if err := cursor.finish(); err != nil {
			return nil, err
		}
		return reply, nil

	case MsgBadRequest:
		reply := BadRequest{EchoedID: cursor.uint32()}
		if err := cursor.finish(); err != nil {
			return nil, err
		}
		return reply, nil

	default:
		return nil, ErrInvalidMessageType
	}
}
