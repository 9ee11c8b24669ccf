// Package queue defines message payloads exchanged over the message
// broker plus the publisher and background consumer for them.
package queue

// ReservationConfirmedEvent is published when an update transitions a
// reservation into CONFIRMED.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type ReservationConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	UserName      string `json:"user_name"`
	SpaceID       uint64 `json:"space_id"`
	SpaceName     string `json:"space_name"`
	EventName     string `json:"event_name"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	ConfirmedAt   string `json:"confirmed_at"`
}
