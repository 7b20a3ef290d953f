package service

import "errors"

var (
	// ErrQuizNotFound maps to 404; the client reacts by routing the user
	// back to the generation flow.
	ErrQuizNotFound = errors.New("quiz not found")

	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCompleted is returned by every session operation once the
	// session reached its terminal state.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrSubmitInFlight is returned when a submit is requested while a
	// previous one has not finished yet. At most one attempt record is
	// ever created per session.
	ErrSubmitInFlight = errors.New("submission already in progress")

	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailTaken = errors.New("email already registered")
)
