// Package repository implements MySQL persistence for users, spaces,
// space types and reservations.  Sentinel errors defined here let the
// service layer distinguish failure scenarios without inspecting SQL
// error strings: not-found values map to 404 responses, while
// ErrTimeSlotTaken signals that the availability check inside a
// write transaction found an overlapping active reservation.
package repository

import "errors"

// ErrSpaceNotFound is returned when no space exists with the given ID.
var ErrSpaceNotFound = errors.New("space not found")

// ErrTypeNotFound is returned when no space type exists with the given ID.
var ErrTypeNotFound = errors.New("space type not found")

// ErrReservationNotFound is returned when no reservation exists with
// the given ID.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrUserNotFound is returned when no user exists with the given ID.
var ErrUserNotFound = errors.New("user not found")

// ErrTimeSlotTaken is returned by reservation writes when the target
// space already has an active reservation overlapping the requested
// window on the same date.  The check runs while the space row is
// locked, so two concurrent writers cannot both pass it.
var ErrTimeSlotTaken = errors.New("time slot already taken")
