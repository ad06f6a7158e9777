package domain

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound   = errors.New("wa account not found")
	ErrInboundNotFound   = errors.New("inbound message not found")
	ErrClaimLocked       = errors.New("processing claim is held by another worker")
	ErrInvalidJobPayload = errors.New("invalid job payload")
	ErrMissingRecipient  = errors.New("inbound message missing from_number")
)

// ClaimLockedError is ErrClaimLocked carrying the moment the holder's lease runs out.
type ClaimLockedError struct {
	Until time.Time
}

func (e *ClaimLockedError) Error() string { return ErrClaimLocked.Error() }

func (e *ClaimLockedError) Is(target error) bool { return target == ErrClaimLocked }

// LockedUntil reports when the lease behind a claim-locked error expires.
func LockedUntil(err error) (time.Time, bool) {
	var le *ClaimLockedError
	if errors.As(err, &le) {
		return le.Until, true
	}
	return time.Time{}, false
}
