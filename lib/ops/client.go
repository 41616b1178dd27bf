// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"fmt"
	"net"
	"time"

	"github.com/bureau-foundation/ticketd/lib/codec"
)

// Call performs one request-response cycle against an ops socket: it
// dials socketPath, writes request as CBOR, and decodes the response
// envelope. The request value must carry the "action" field the
// server routes on. A response with ok=false is returned as an error.
func Call(socketPath string, request any, timeout time.Duration) (Response, error) {
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return Response{}, fmt.Errorf("dialing %s: %w", socketPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return Response{}, fmt.Errorf("sending request: %w", err)
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		return Response{}, fmt.Errorf("reading response: %w", err)
	}
	if !response.OK {
		return response, fmt.Errorf("request failed: %s", response.Error)
	}
	return response, nil
}
