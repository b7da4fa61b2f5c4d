package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrInvalidTransition is returned when a requested order status change
// is not allowed from the order's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrForbidden indicates the acting user lacks the required role.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a uniqueness or concurrent-mutation conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrUpstream indicates an external collaborator (payment provider,
// notification channel) failed; the core surfaces it without retrying.
var ErrUpstream = errors.New("upstream failure")
