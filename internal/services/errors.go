package services

import "errors"

// Expected rejections of the card state machine. Handlers map these to 4xx
// responses; callers should treat them as normal "try again" outcomes rather
// than faults.
var (
	// ErrCardUnavailable — target card is not in the available state
	ErrCardUnavailable = errors.New("card is not available")
	// ErrActiveCardHeld — identity already holds an in-progress card
	ErrActiveCardHeld = errors.New("identity already holds an active card")
	// ErrNotCardOwner — card is not locked by the calling identity
	ErrNotCardOwner = errors.New("card is locked by another identity")
)

// Terminal failures for a single call.
var (
	ErrGameNotFound     = errors.New("game document not found")
	ErrCardNotFound     = errors.New("card not found in deck")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrTxConflict — optimistic transaction lost the race too many times
	ErrTxConflict = errors.New("transaction conflict, retries exhausted")
	// ErrIdentityRequired — operation attempted without a resolved identity
	ErrIdentityRequired = errors.New("identity is required")
)
