package apperrors

import "errors"

var (
	// user
	ErrUserNotFound = errors.New("user not found")

	// token
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// post
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("not authorized")

	// vote
	ErrAlreadyVoted = errors.New("already voted with this polarity")
	// ErrVoteConflict surfaces a uniqueness violation from two concurrent
	// first-votes on the same pair. Callers retry once; the retry resolves
	// to a flip or ErrAlreadyVoted.
	ErrVoteConflict = errors.New("concurrent vote conflict")

	// agents
	ErrGeneration = errors.New("error processing query")
)
