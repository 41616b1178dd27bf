// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration for
// the ops socket protocol, so that the server and ticketctl encode
// identically without duplicating configuration.
//
// The ticket protocol itself (lib/wire) is a fixed-layout binary
// format and does not go through this package; CBOR is used only on
// the operational surface, where requests and responses are small
// structured values that evolve over time.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. Same logical data always produces identical bytes.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (the socket connection):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Struct tag rule: types that only ever cross the socket as CBOR
// carry `cbor` tags (the response envelope); types also printed by
// ticketctl or serialized as JSON carry `json` tags, which
// fxamacker/cbor reads as fallback. Never both on one field.
package codec
