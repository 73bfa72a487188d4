package game

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")

	// ErrMoveTooFar means a requested position exceeded the per-update
	// movement cap. The request is dropped; the player keeps their position.
	ErrMoveTooFar = errors.New("movement exceeds cap")

	// ErrTargetUnavailable means a combat target does not exist or is dead.
	// Old-school protocol convention: the client gets silence, not an error.
	ErrTargetUnavailable = errors.New("target unavailable")
)
