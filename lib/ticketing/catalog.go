// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketing

import "iter"

// MaxDescriptionLength is the longest event description the protocol
// carries: the events-reply encodes the length as a single byte, but
// the catalog file format caps descriptions well below that at 80
// bytes.
const MaxDescriptionLength = 80

// Entry is one event as supplied by the catalog source, before IDs
// are assigned.
type Entry struct {
	Description string
	TicketCount uint16
}

// Event is a snapshot of one catalog event. TicketCount is the
// remaining inventory at the time the snapshot was taken.
type Event struct {
	ID          uint32
	Description string
	TicketCount uint16
}

// Catalog is the fixed, ordered list of events with their remaining
// ticket inventory. Events are created once at construction and never
// added, removed, or renumbered afterward; the remaining count is the
// only mutable field and only the reservation engine adjusts it.
//
// Catalog performs no locking. The serve loop is the single writer.
type Catalog struct {
	events []Event
}

// NewCatalog builds a catalog from the given entries, assigning event
// IDs 0, 1, 2, ... in input order.
func NewCatalog(entries []Entry) *Catalog {
	events := make([]Event, len(entries))
	for i, entry := range entries {
		events[i] = Event{
			ID:          uint32(i),
			Description: entry.Description,
			TicketCount: entry.TicketCount,
		}
	}
	return &Catalog{events: events}
}

// Len returns the number of events in the catalog.
func (c *Catalog) Len() int {
	return len(c.events)
}

// Events yields a snapshot of every event in ID order. The sequence
// is restartable and reflects the live remaining counts at the moment
// each event is yielded.
func (c *Catalog) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, event := range c.events {
			if !yield(event) {
				return
			}
		}
	}
}

// TryDecrement subtracts n from the event's remaining count if the
// event exists and has at least n tickets left. Returns false (and
// changes nothing) otherwise.
func (c *Catalog) TryDecrement(eventID uint32, n uint16) bool {
	if eventID >= uint32(len(c.events)) {
		return false
	}
	if c.events[eventID].TicketCount < n {
		return false
	}
	c.events[eventID].TicketCount -= n
	return true
}

// Increment returns n tickets to the event's remaining count. Out of
// range event IDs are ignored; reclamation only ever hands back IDs
// that were valid at reservation time, so this cannot occur.
func (c *Catalog) Increment(eventID uint32, n uint16) {
	if eventID >= uint32(len(c.events)) {
		return
	}
	c.events[eventID].TicketCount += n
}
