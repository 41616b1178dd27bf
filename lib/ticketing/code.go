// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketing

import "errors"

// CodeLength is the size of a ticket code in bytes.
const CodeLength = 7

// codeSpace is the total number of distinct ticket codes: 36^7.
const codeSpace = 36 * 36 * 36 * 36 * 36 * 36 * 36

// ErrTicketCodesExhausted reports that the 36^7 code space has been
// consumed. Unreachable under any realistic load; the engine treats
// it as fatal for the triggering request rather than wrapping the
// counter silently.
var ErrTicketCodesExhausted = errors.New("ticket code space exhausted")

// Code is a 7-character ticket code over the alphabet 0-9 then A-Z,
// most significant character first. Codes issued over a sequencer's
// lifetime are strictly increasing in byte order.
type Code [CodeLength]byte

// String returns the code as issued to clients.
func (c Code) String() string {
	return string(c[:])
}

// Next returns the code one increment after c. The carry propagates
// from the least significant (rightmost) character: 9 wraps to A, Z
// wraps to 0 with carry into the next position.
func (c Code) Next() Code {
	return c.advance(1)
}

// advance returns the code n increments after c, wrapping at the end
// of the code space. Callers guard against wrapping via the
// sequencer's remaining-count check.
func (c Code) advance(n uint64) Code {
	carry := n
	for i := CodeLength - 1; i >= 0 && carry > 0; i-- {
		sum := uint64(digitValue(c[i])) + carry
		c[i] = digitChar(byte(sum % 36))
		carry = sum / 36
	}
	return c
}

func digitValue(ch byte) byte {
	if ch < 'A' {
		return ch - '0'
	}
	return ch - 'A' + 10
}

func digitChar(value byte) byte {
	if value > 9 {
		return 'A' + value - 10
	}
	return '0' + value
}

// Sequencer allocates contiguous blocks of ticket codes. Blocks never
// overlap and the full allocation history is strictly increasing, so
// every code issued by one sequencer is globally unique.
type Sequencer struct {
	counter   Code
	remaining uint64
}

// NewSequencer returns a sequencer whose first allocated code is
// "0000000".
func NewSequencer() *Sequencer {
	var counter Code
	for i := range counter {
		counter[i] = '0'
	}
	return &Sequencer{counter: counter, remaining: codeSpace}
}

// Allocate reserves a block of n consecutive codes and returns the
// first. Fails with ErrTicketCodesExhausted, without mutating the
// counter, if fewer than n codes remain.
func (s *Sequencer) Allocate(n uint16) (Code, error) {
	if uint64(n) > s.remaining {
		return Code{}, ErrTicketCodesExhausted
	}
	base := s.counter
	s.counter = s.counter.advance(uint64(n))
	s.remaining -= uint64(n)
	return base, nil
}

// Remaining returns the number of codes not yet allocated.
func (s *Sequencer) Remaining() uint64 {
	return s.remaining
}
