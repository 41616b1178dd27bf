// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketing

// expirationQueue is a FIFO of pending reservations in deadline
// order. Every reservation shares one fixed timeout added to a
// non-decreasing wall-clock read at creation, so append order already
// equals deadline order and no sorting is needed.
type expirationQueue struct {
	entries []expirationEntry
}

type expirationEntry struct {
	reservationID uint32
	expiresAt     uint64
}

// push appends a reservation deadline to the queue.
func (q *expirationQueue) push(reservationID uint32, expiresAt uint64) {
	q.entries = append(q.entries, expirationEntry{
		reservationID: reservationID,
		expiresAt:     expiresAt,
	})
}

// reclaimExpired pops entries whose deadline is strictly before now,
// invoking onExpire for each, and stops at the first entry still
// alive. A deadline exactly equal to now is not yet expired.
func (q *expirationQueue) reclaimExpired(now uint64, onExpire func(reservationID uint32)) {
	for len(q.entries) > 0 {
		front := q.entries[0]
		if front.expiresAt >= now {
			return
		}
		q.entries = q.entries[1:]
		onExpire(front.reservationID)
	}
}

// len returns the number of queued deadlines, including deadlines of
// already-redeemed reservations that have not yet been popped.
func (q *expirationQueue) len() int {
	return len(q.entries)
}
