// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketing

import (
	"slices"
	"testing"
)

func TestQueueReclaimStopsAtFirstLiveEntry(t *testing.T) {
	t.Parallel()

	var queue expirationQueue
	queue.push(1, 100)
	queue.push(2, 105)
	queue.push(3, 110)

	var expired []uint32
	queue.reclaimExpired(106, func(id uint32) { expired = append(expired, id) })

	if want := []uint32{1, 2}; !slices.Equal(expired, want) {
		t.Fatalf("expired = %v, want %v", expired, want)
	}
	if got := queue.len(); got != 1 {
		t.Fatalf("len() after reclaim = %d, want 1", got)
	}
}

func TestQueueDeadlineEqualToNowIsNotExpired(t *testing.T) {
	t.Parallel()

	var queue expirationQueue
	queue.push(7, 100)

	queue.reclaimExpired(100, func(id uint32) {
		t.Fatalf("entry %d expired at its own deadline", id)
	})
	queue.reclaimExpired(101, func(id uint32) {
		if id != 7 {
			t.Fatalf("expired id = %d, want 7", id)
		}
	})
	if got := queue.len(); got != 0 {
		t.Fatalf("len() = %d, want 0", got)
	}
}

func TestQueueReclaimOnEmptyQueue(t *testing.T) {
	t.Parallel()

	var queue expirationQueue
	queue.reclaimExpired(1000, func(id uint32) {
		t.Fatalf("empty queue expired %d", id)
	})
}

func TestQueueReclaimEachEntryOnce(t *testing.T) {
	t.Parallel()

	var queue expirationQueue
	queue.push(1, 100)

	calls := 0
	queue.reclaimExpired(200, func(uint32) { calls++ })
	queue.reclaimExpired(300, func(uint32) { calls++ })
	if calls != 1 {
		t.Fatalf("entry reclaimed %d times, want 1", calls)
	}
}
