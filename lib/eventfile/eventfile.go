// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventfile loads the event catalog from its text file
// format: two lines per event, a description line followed by a
// decimal ticket count line. Parsing validates what the format can
// get wrong (over-long descriptions, non-numeric or out-of-range
// counts, a trailing description with no count) and names the
// offending line in every error.
package eventfile

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/ticketd/lib/ticketing"
)

// Load reads and parses the event file at path.
func Load(path string) ([]ticketing.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening event file: %w", err)
	}
	defer file.Close()

	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads the two-line-per-event format. An empty input is a
// valid empty catalog. Description lines may be empty; a single
// trailing CR is stripped from every line so CRLF files load
// unchanged.
func Parse(r io.Reader) ([]ticketing.Entry, error) {
	var entries []ticketing.Entry

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		description := strings.TrimSuffix(scanner.Text(), "\r")
		if len(description) > ticketing.MaxDescriptionLength {
			return nil, fmt.Errorf("line %d: description is %d bytes, maximum is %d",
				line, len(description), ticketing.MaxDescriptionLength)
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading event file: %w", err)
			}
			return nil, fmt.Errorf("line %d: description %q has no ticket count line", line, description)
		}
		line++
		countText := strings.TrimSuffix(scanner.Text(), "\r")
		count, err := strconv.ParseUint(countText, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid ticket count %q", line, countText)
		}

		entries = append(entries, ticketing.Entry{
			Description: description,
			TicketCount: uint16(count),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return entries, nil
}

// Fingerprint returns the hex BLAKE3 hash of the raw file content.
// Logged at startup and reported by the ops info action so operators
// can verify which catalog a running server loaded.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
