package service

import "errors"

// ErrValidation marks malformed input rejected before touching storage.
// Wrapped with detail, e.g. fmt.Errorf("%w: start date after end date", ErrValidation).
var ErrValidation = errors.New("validation failed")

// ErrInvalidSignature is returned when a checkout callback's signature
// does not match the HMAC computed with the shared secret. Possible
// tampering; the booking is left untouched.
var ErrInvalidSignature = errors.New("invalid payment signature")
