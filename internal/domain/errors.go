package domain

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or already terminated session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoPendingQuestion is returned when a submission arrives while no question is outstanding.
	ErrNoPendingQuestion = errors.New("no pending question")
	// ErrCatalogExhausted is returned when no question matches the requested criteria.
	ErrCatalogExhausted = errors.New("catalog exhausted")
	// ErrQuestionNotFound is returned by catalog lookups by id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidArgument wraps input validation failures.
	ErrInvalidArgument = errors.New("invalid argument")
)
