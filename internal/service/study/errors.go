package study

import "errors"

// Common study service errors
var (
	// ErrCardNotFound indicates the referenced card does not exist
	ErrCardNotFound = errors.New("card not found")

	// ErrUserNotFound indicates the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrCardNotSelected indicates the card has no progress records for
	// the user, so there is nothing to deselect
	ErrCardNotSelected = errors.New("card is not in the user's study set")

	// ErrInvalidDirection indicates an unrecognized study direction
	ErrInvalidDirection = errors.New("invalid study direction")

	// ErrNoCardsGiven indicates a selection request with an empty card list
	ErrNoCardsGiven = errors.New("no cards given")
)
