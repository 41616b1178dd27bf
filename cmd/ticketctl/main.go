// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ticketd/lib/codec"
	"github.com/bureau-foundation/ticketd/lib/ops"
	"github.com/bureau-foundation/ticketd/lib/ticketing"
	"github.com/bureau-foundation/ticketd/lib/version"
	"github.com/bureau-foundation/ticketd/lib/wire"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: ticketctl <events|reserve|tickets|status|version> [flags]")
	}
	switch args[0] {
	case "events":
		return runEvents(args[1:])
	case "reserve":
		return runReserve(args[1:])
	case "tickets":
		return runTickets(args[1:])
	case "status":
		return runStatus(args[1:])
	case "version", "--version":
		fmt.Printf("ticketctl %s\n", version.Info())
		return nil
	default:
		return fmt.Errorf("unknown command %q (expected events, reserve, tickets, status, or version)", args[0])
	}
}

// serverFlags adds the flags shared by every UDP subcommand.
func serverFlags(flags *pflag.FlagSet) (server *string, timeout *time.Duration) {
	server = flags.String("server", "localhost:2022", "ticketd address (host:port)")
	timeout = flags.Duration("timeout", 5*time.Second, "how long to wait for the reply datagram")
	return server, timeout
}

// exchange sends one request datagram and decodes the one reply. A
// connected UDP socket is used so replies from other sources are not
// mistaken for ours.
func exchange(server string, request []byte, timeout time.Duration) (wire.Reply, error) {
	conn, err := net.Dial("udp", server)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", server, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	if _, err := conn.Write(request); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	buffer := make([]byte, wire.MaxDatagram)
	length, err := conn.Read(buffer)
	if err != nil {
		return nil, fmt.Errorf("waiting for reply: %w", err)
	}
	return wire.DecodeReply(buffer[:length])
}

func runEvents(args []string) error {
	flags := pflag.NewFlagSet("events", pflag.ContinueOnError)
	server, timeout := serverFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	reply, err := exchange(*server, wire.AppendEventsQuery(nil), *timeout)
	if err != nil {
		return err
	}
	events, ok := reply.(wire.EventsReply)
	if !ok {
		return fmt.Errorf("unexpected reply type %T", reply)
	}
	for _, event := range events.Events {
		fmt.Printf("%d\t%d\t%s\n", event.ID, event.TicketCount, event.Description)
	}
	return nil
}

func runReserve(args []string) error {
	flags := pflag.NewFlagSet("reserve", pflag.ContinueOnError)
	server, timeout := serverFlags(flags)
	eventID := flags.Uint32("event", 0, "event ID to reserve tickets for")
	ticketCount := flags.Uint16("tickets", 1, "number of tickets to reserve")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if !flags.Changed("event") {
		return fmt.Errorf("--event is required")
	}

	request := wire.AppendReserveRequest(nil, *eventID, *ticketCount)
	reply, err := exchange(*server, request, *timeout)
	if err != nil {
		return err
	}
	switch reply := reply.(type) {
	case wire.ReserveReply:
		reservation := reply.Reservation
		fmt.Printf("reservation:\t%d\n", reservation.ID)
		fmt.Printf("event:\t%d\n", reservation.EventID)
		fmt.Printf("tickets:\t%d\n", reservation.TicketCount)
		fmt.Printf("cookie:\t%s\n", reservation.Cookie[:])
		fmt.Printf("expires_at:\t%d\n", reservation.ExpiresAt)
		return nil
	case wire.BadRequest:
		return fmt.Errorf("server rejected the reservation for event %d", reply.EchoedID)
	default:
		return fmt.Errorf("unexpected reply type %T", reply)
	}
}

func runTickets(args []string) error {
	flags := pflag.NewFlagSet("tickets", pflag.ContinueOnError)
	server, timeout := serverFlags(flags)
	reservationID := flags.Uint32("reservation", 0, "reservation ID to redeem")
	cookieText := flags.String("cookie", "", "reservation cookie, exactly as printed by reserve")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if !flags.Changed("reservation") {
		return fmt.Errorf("--reservation is required")
	}
	if len(*cookieText) != ticketing.CookieLength {
		return fmt.Errorf("cookie must be exactly %d bytes, got %d", ticketing.CookieLength, len(*cookieText))
	}
	var cookie ticketing.Cookie
	copy(cookie[:], *cookieText)

	request := wire.AppendTicketsRequest(nil, *reservationID, cookie)
	reply, err := exchange(*server, request, *timeout)
	if err != nil {
		return err
	}
	switch reply := reply.(type) {
	case wire.TicketsReply:
		for _, code := range reply.Codes {
			fmt.Println(code.String())
		}
		return nil
	case wire.BadRequest:
		return fmt.Errorf("server rejected redemption of reservation %d", reply.EchoedID)
	default:
		return fmt.Errorf("unexpected reply type %T", reply)
	}
}

// statusData mirrors the ticketd status response.
type statusData struct {
	UptimeSeconds float64 `cbor:"uptime_seconds"`
}

// infoData mirrors the ticketd info response.
type infoData struct {
	UptimeSeconds      float64   `cbor:"uptime_seconds"`
	Events             int       `cbor:"events"`
	CatalogFingerprint string    `cbor:"catalog_fingerprint"`
	ListenAddr         string    `cbor:"listen_addr"`
	TimeoutSeconds     uint64    `cbor:"timeout_seconds"`
	Stats              statsData `cbor:"stats"`
}

type statsData struct {
	Received            uint64 `json:"received"`
	Malformed           uint64 `json:"malformed"`
	RepliesSent         uint64 `json:"replies_sent"`
	EventsServed        uint64 `json:"events_served"`
	ReservationsCreated uint64 `json:"reservations_created"`
	TicketsIssued       uint64 `json:"tickets_issued"`
	BadRequests         uint64 `json:"bad_requests"`
}

func runStatus(args []string) error {
	flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
	socketPath := flags.String("socket", "", "path of the ticketd ops socket (required)")
	info := flags.Bool("info", false, "request the full diagnostic snapshot instead of liveness")
	timeout := flags.Duration("timeout", 5*time.Second, "socket request timeout")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *socketPath == "" {
		return fmt.Errorf("--socket is required")
	}

	action := "status"
	if *info {
		action = "info"
	}
	response, err := ops.Call(*socketPath, map[string]string{"action": action}, *timeout)
	if err != nil {
		return err
	}

	if !*info {
		var data statusData
		if err := codec.Unmarshal(response.Data, &data); err != nil {
			return fmt.Errorf("decoding status response: %w", err)
		}
		fmt.Printf("uptime_seconds:\t%.1f\n", data.UptimeSeconds)
		return nil
	}

	var data infoData
	if err := codec.Unmarshal(response.Data, &data); err != nil {
		return fmt.Errorf("decoding info response: %w", err)
	}
	fmt.Printf("uptime_seconds:\t%.1f\n", data.UptimeSeconds)
	fmt.Printf("events:\t%d\n", data.Events)
	fmt.Printf("catalog_fingerprint:\t%s\n", data.CatalogFingerprint)
	fmt.Printf("listen_addr:\t%s\n", data.ListenAddr)
	fmt.Printf("timeout_seconds:\t%d\n", data.TimeoutSeconds)
	fmt.Printf("received:\t%d\n", data.Stats.Received)
	fmt.Printf("malformed:\t%d\n", data.Stats.Malformed)
	fmt.Printf("replies_sent:\t%d\n", data.Stats.RepliesSent)
	fmt.Printf("events_served:\t%d\n", data.Stats.EventsServed)
	fmt.Printf("reservations_created:\t%d\n", data.Stats.ReservationsCreated)
	fmt.Printf("tickets_issued:\t%d\n", data.Stats.TicketsIssued)
	fmt.Printf("bad_requests:\t%d\n", data.Stats.BadRequests)
	return nil
}
