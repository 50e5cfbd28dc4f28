package services

import "errors"

// Errors shared across services and the HTTP mapping. Precondition and
// referential violations never mutate state; the caller branches on the kind.
var (
	// Referential errors
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMatchNotFound       = errors.New("match not found")

	// Registration preconditions
	ErrAlreadyRegistered  = errors.New("user is already registered for this tournament")
	ErrTournamentFull     = errors.New("tournament registration is full")
	ErrRegistrationClosed = errors.New("tournament registration is not open")
	ErrDeadlinePassed     = errors.New("tournament registration deadline has passed")
	ErrSeedTaken          = errors.New("seed is already taken in this tournament")

	// Lifecycle preconditions
	ErrInsufficientParticipants = errors.New("tournament needs at least 2 participants to start")
	ErrInvalidState             = errors.New("operation not allowed in the tournament's current state")

	// Match result preconditions
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrMatchNotReady         = errors.New("match is still waiting for an opponent")
	ErrInvalidWinner         = errors.New("winner is not one of the match's players")
	ErrInvalidScore          = errors.New("invalid match score payload")

	// Validation
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrInvalidFormat          = errors.New("invalid tournament format")
	ErrInvalidCapacity        = errors.New("tournament max participants must be at least 2")
	ErrInvalidSeed            = errors.New("seed must be a positive number")
	ErrInvalidDeadline        = errors.New("tournament registration deadline is required")
	ErrInvalidSwissRounds     = errors.New("swiss round count must be positive")
)
