package model

import (
	"fmt"
	"strings"
)

// Status enumerates the lifecycle states of a reservation.  The set is
// closed: PENDING is the only state assigned at creation, the other
// four are reachable exclusively through explicit updates.  Values are
// stored upper-case in the reservations.status column and serialized
// upper-case in JSON responses.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCanceled  Status = "CANCELED"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
)

// Statuses returns every valid reservation status in declaration order.
// The slice backs the GET /v1/reservations/status endpoint.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted, StatusNoShow}
}

// ParseStatus converts a client-supplied string into a Status.  Matching
// is case-insensitive so "pending" and "PENDING" are equivalent.  An
// error naming the valid values is returned for anything else.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted, StatusNoShow:
		return v, nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of %s", s, statusList())
}

// IsActive reports whether a reservation in this status occupies its
// time window.  Only active reservations participate in conflict
// checks; CANCELED, COMPLETED and NO_SHOW are historical.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func statusList() string {
	all := Statuses()
	parts := make([]string, len(all))
	for i, st := range all {
		parts[i] = string(st)
	}
	return strings.Join(parts, ", ")
}
