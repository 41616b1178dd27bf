// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketing

import (
	"crypto/subtle"
	"time"

	"github.com/bureau-foundation/ticketd/lib/clock"
)

// MinReservationID is the first reservation ID the engine issues.
// IDs below this bound never identify a reservation, which lets the
// uint32 counter's wraparound be detected (a wrapped successor would
// fall below the bound).
const MinReservationID = 10_000_000

// MaxTicketCount is the largest reservation a single tickets-reply
// datagram can carry: a 65507-byte UDP payload minus the 1-byte tag,
// 4-byte reservation ID, and 2-byte count, divided by the code size.
const MaxTicketCount = (65507 - 1 - 4 - 2) / CodeLength

// Reservation is the public value returned to a client when a
// reservation is created.
type Reservation struct {
	ID          uint32
	EventID     uint32
	TicketCount uint16
	Cookie      Cookie
	ExpiresAt   uint64
}

// pending is the engine's bookkeeping record for one reservation.
// The ticket block is allocated at creation time and only its base is
// stored; redemption regenerates the block deterministically.
type pending struct {
	eventID     uint32
	ticketCount uint16
	cookie      Cookie
	ticketBase  Code
	redeemed    bool
}

// Engine owns the reservation lifecycle: it validates requests
// against the catalog, creates and redeems reservations, and lazily
// reclaims expired unredeemed holds back into the event inventory.
//
// Engine performs no locking; the serve loop is the single caller.
// Instances are independent, so tests can run many engines side by
// side.
type Engine struct {
	catalog           *Catalog
	reservations      map[uint32]*pending
	queue             expirationQueue
	sequencer         *Sequencer
	nextReservationID uint32
	timeout           uint64
	clock             clock.Clock
}

// NewEngine returns an engine selling from catalog. Reservations
// expire timeout after creation; sub-second fractions are truncated
// because the protocol carries whole seconds.
func NewEngine(catalog *Catalog, timeout time.Duration, clk clock.Clock) *Engine {
	return &Engine{
		catalog:           catalog,
		reservations:      make(map[uint32]*pending),
		sequencer:         NewSequencer(),
		nextReservationID: MinReservationID,
		timeout:           uint64(timeout / time.Second),
		clock:             clk,
	}
}

// MakeReservation places a hold on ticketCount tickets for the given
// event and returns the reservation the client must present (with its
// cookie) to redeem them. Expired holds are reclaimed first, so
// inventory freed by expiry is immediately available to this request.
//
// Fails with ErrInvalidTicketCount, ErrTooManyTickets,
// ErrEventNotFound, ErrTicketShortage, or ErrReservationIDExhausted.
// On failure no state changes.
func (e *Engine) MakeReservation(eventID uint32, ticketCount uint16) (Reservation, error) {
	now := e.now()
	e.reclaim(now)

	if ticketCount == 0 {
		return Reservation{}, ErrInvalidTicketCount
	}
	if ticketCount > MaxTicketCount {
		return Reservation{}, ErrTooManyTickets
	}
	if eventID >= uint32(e.catalog.Len()) {
		return Reservation{}, ErrEventNotFound
	}
	// Guard both allocators before touching inventory so a failed
	// request leaves nothing to roll back.
	if e.nextReservationID+1 < MinReservationID {
		return Reservation{}, ErrReservationIDExhausted
	}
	if uint64(ticketCount) > e.sequencer.Remaining() {
		return Reservation{}, ErrTicketCodesExhausted
	}
	if !e.catalog.TryDecrement(eventID, ticketCount) {
		return Reservation{}, ErrTicketShortage
	}

	reservationID := e.nextReservationID
	e.nextReservationID++

	expiresAt := now + e.timeout
	ticketBase, err := e.sequencer.Allocate(ticketCount)
	if err != nil {
		// Unreachable: Remaining was checked above.
		e.catalog.Increment(eventID, ticketCount)
		return Reservation{}, err
	}

	record := &pending{
		eventID:     eventID,
		ticketCount: ticketCount,
		cookie:      GenerateCookie(reservationID),
		ticketBase:  ticketBase,
	}
	e.reservations[reservationID] = record
	e.queue.push(reservationID, expiresAt)

	return Reservation{
		ID:          reservationID,
		EventID:     eventID,
		TicketCount: ticketCount,
		Cookie:      record.cookie,
		ExpiresAt:   expiresAt,
	}, nil
}

// GetTickets redeems a reservation, returning its ticket codes in
// increasing order. Redemption marks the reservation so a later
// expiry no longer returns its tickets to the inventory; the codes
// have been issued for good. Redeeming the same reservation again
// with the correct cookie returns the same codes.
//
// Fails with ErrReservationNotFound (never issued, or expired
// unredeemed and reclaimed) or ErrInvalidCookie. On failure no state
// changes.
func (e *Engine) GetTickets(reservationID uint32, cookie Cookie) ([]Code, error) {
	e.reclaim(e.now())

	record, ok := e.reservations[reservationID]
	if !ok {
		return nil, ErrReservationNotFound
	}
	if subtle.ConstantTimeCompare(cookie[:], record.cookie[:]) != 1 {
		return nil, ErrInvalidCookie
	}

	record.redeemed = true

	codes := make([]Code, record.ticketCount)
	codes[0] = record.ticketBase
	for i := 1; i < len(codes); i++ {
		codes[i] = codes[i-1].Next()
	}
	return codes, nil
}

// PendingCount returns the number of reservation records held,
// including redeemed records, which are retained for the process
// lifetime.
func (e *Engine) PendingCount() int {
	return len(e.reservations)
}

// reclaim returns every expired unredeemed hold to its event's
// inventory and drops its record. Redeemed reservations pass through
// untouched: their tickets were physically issued, and the record is
// deliberately retained so repeat redemptions keep working.
func (e *Engine) reclaim(now uint64) {
	e.queue.reclaimExpired(now, func(reservationID uint32) {
		record, ok := e.reservations[reservationID]
		if !ok || record.redeemed {
			return
		}
		e.catalog.Increment(record.eventID, record.ticketCount)
		delete(e.reservations, reservationID)
	})
}

// now reads the injected clock as whole seconds since the epoch.
func (e *Engine) now() uint64 {
	return uint64(e.clock.Now().Unix())
}
