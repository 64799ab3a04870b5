package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound   = errors.New("player not found")
	ErrDuplicateContact = errors.New("contact is already registered")

	// Game errors
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyActive = errors.New("a game is already active or pending")
	ErrNotAuthorized     = errors.New("player may not perform this action")

	// Queue errors
	ErrQueueMissing   = errors.New("queue document does not exist")
	ErrQueueCorrupted = errors.New("more than one queue document exists")

	// ErrDataIntegrity marks an unexpected cross-collection inconsistency,
	// such as a queue entry whose contact has no player record. Fatal to the
	// action; never repaired by silently dropping data.
	ErrDataIntegrity = errors.New("data integrity violation")
)
