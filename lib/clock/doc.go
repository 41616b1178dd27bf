// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// The reservation engine timestamps reservations when they are created
// and reclaims expired ones lazily on the next request, so the only
// time operation production code performs is reading the current time.
// Production code accepts a Clock parameter instead of calling time.Now
// directly. In production, Real() provides standard library behavior.
// In tests, Fake() provides a deterministic clock that advances only
// when Advance is called.
//
// # Wiring Pattern
//
// Add a Clock field to structs that read time:
//
//	type Engine struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	e := NewEngine(catalog, timeout, clock.Real())
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	e := NewEngine(catalog, timeout, c)
//	// ... create a reservation ...
//	c.Advance(6 * time.Second) // step past the expiration deadline
package clock
