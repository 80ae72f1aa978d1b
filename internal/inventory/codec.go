package inventory

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The seat map and ticket counters are persisted as JSON text columns on the
// event row. Decoding happens here and nowhere else: callers always work on
// typed slices. Stored values may be a JSON array, a doubly-encoded JSON
// string containing an array, or garbage from earlier writers; anything
// unreadable decodes to an empty slice plus an error the caller surfaces as
// retriable instead of overwriting the column.

// DecodeSeats parses the persisted seat map column.
func DecodeSeats(raw string) ([]Seat, error) {
	var seats []Seat
	if err := decodeArray(raw, &seats); err != nil {
		return []Seat{}, fmt.Errorf("seat map unreadable: %w", err)
	}
	if seats == nil {
		seats = []Seat{}
	}
	return seats, nil
}

// DecodeTickets parses the persisted ticket counters column.
func DecodeTickets(raw string) ([]TicketTypeCounter, error) {
	var tickets []TicketTypeCounter
	if err := decodeArray(raw, &tickets); err != nil {
		return []TicketTypeCounter{}, fmt.Errorf("ticket counters unreadable: %w", err)
	}
	if tickets == nil {
		tickets = []TicketTypeCounter{}
	}
	return tickets, nil
}

// EncodeSeats serializes a seat map for storage.
func EncodeSeats(seats []Seat) (string, error) {
	if seats == nil {
		seats = []Seat{}
	}
	data, err := json.Marshal(seats)
	if err != nil {
		return "", fmt.Errorf("failed to encode seat map: %w", err)
	}
	return string(data), nil
}

// EncodeTickets serializes ticket counters for storage.
func EncodeTickets(tickets []TicketTypeCounter) (string, error) {
	if tickets == nil {
		tickets = []TicketTypeCounter{}
	}
	data, err := json.Marshal(tickets)
	if err != nil {
		return "", fmt.Errorf("failed to encode ticket counters: %w", err)
	}
	return string(data), nil
}

func decodeArray(raw string, dest interface{}) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	// Older writers double-encoded the column: a JSON string whose content
	// is the actual array.
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return err
		}
		trimmed = strings.TrimSpace(inner)
		if trimmed == "" || trimmed == "null" {
			return nil
		}
	}

	if !strings.HasPrefix(trimmed, "[") {
		return fmt.Errorf("expected JSON array, got %q", truncate(trimmed, 32))
	}

	return json.Unmarshal([]byte(trimmed), dest)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
