package model

import "time"

// DateLayout is the calendar-date format accepted and emitted by the
// API, matching the DATE column representation.
const DateLayout = "2006-01-02"

// TimeLayout is the minute-resolution time-of-day format for the
// start_time and end_time columns.  The zero-padded 24h form sorts
// lexicographically, which the overlap predicates rely on.
const TimeLayout = "15:04"

// Reservation records a user's booking of one space for one time
// window on one calendar date, as stored in the `reservations` table.
// Date and times are kept in their wire string forms; all validation
// happens in the service layer before a row is ever written.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – user who holds the reservation.
//	SpaceID   – space being reserved.
//	EventName – event name, unique across all reservations.
//	Status    – lifecycle state (see Status).
//	Date      – calendar date in DateLayout.
//	StartTime – window start in TimeLayout.
//	EndTime   – window end in TimeLayout (always after StartTime).
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    // reservations.id
	UserID    uint64    // reservations.user_id
	SpaceID   uint64    // reservations.space_id
	EventName string    // reservations.event_name
	Status    Status    // reservations.status
	Date      string    // reservations.date
	StartTime string    // reservations.start_time
	EndTime   string    // reservations.end_time
	CreatedAt time.Time // reservations.created_at
	UpdatedAt time.Time // reservations.updated_at
}

// Overlaps reports whether the half-open windows [aStart,aEnd) and
// [bStart,bEnd) intersect.  Windows that merely touch (one ending
// exactly when the other starts) do not overlap.  Arguments must be in
// TimeLayout, whose fixed-width form makes string comparison agree
// with chronological order.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}
