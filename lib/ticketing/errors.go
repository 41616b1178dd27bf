// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketing

import "errors"

// The closed set of request-scoped engine failures. The dispatcher
// matches these with errors.Is and converts every one into a
// bad-request reply echoing the offending ID; none crash the process
// or propagate past a single request.
var (
	// ErrEventNotFound reports a reservation request for an event ID
	// outside the catalog range.
	ErrEventNotFound = errors.New("event does not exist")

	// ErrInvalidTicketCount reports a reservation request for zero
	// tickets.
	ErrInvalidTicketCount = errors.New("ticket count is invalid")

	// ErrTooManyTickets reports a reservation whose tickets-reply
	// could not fit in a single datagram.
	ErrTooManyTickets = errors.New("ticket count exceeds single-datagram capacity")

	// ErrTicketShortage reports that the event has fewer tickets
	// remaining than requested.
	ErrTicketShortage = errors.New("too few tickets available")

	// ErrReservationNotFound reports redemption of an ID that was
	// never issued or that expired unredeemed and was reclaimed.
	ErrReservationNotFound = errors.New("reservation does not exist")

	// ErrInvalidCookie reports a redemption cookie that does not
	// match the reservation's stored cookie.
	ErrInvalidCookie = errors.New("invalid cookie")

	// ErrReservationIDExhausted reports that the 32-bit reservation
	// ID counter would wrap past its reserved lower bound.
	ErrReservationIDExhausted = errors.New("reservation ID space exhausted")
)
