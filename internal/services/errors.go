package services

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when Get finds a session past its idle
	// TTL and drops it. It matches ErrSessionNotFound.
	ErrSessionExpired = fmt.Errorf("%w: expired", ErrSessionNotFound)

	// ErrWindowTooLarge is returned when an analysis window exceeds the
	// configured number of days.
	ErrWindowTooLarge = errors.New("analysis window too large")
)
