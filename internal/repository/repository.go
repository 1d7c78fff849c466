// Package repository implements all database queries for the car rental
// marketplace. It uses pgx directly (no ORM) for transparency and
// performance.
package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDatesUnavailable is returned when a requested date range overlaps
// a committed range on the same vehicle. This is an expected business
// conflict, not a system fault.
var ErrDatesUnavailable = errors.New("dates unavailable")

// ErrDuplicateEmail is returned when registering an email that already
// has an account.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrAlreadyCancelled is returned when mutating a cancelled booking.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrCancelNotAllowed is returned when cancelling a booking that has
// money applied to it. Refunds are an explicit reversal flow, not a
// side effect of cancellation.
var ErrCancelNotAllowed = errors.New("booking has payments applied")
