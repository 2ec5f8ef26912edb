package authservice

import "errors"

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken is returned when no token is provided.
	ErrMissingToken = errors.New("missing authentication token")

	// ErrWrongParticipant is returned for a valid token minted for another
	// participant than the one this node acts for.
	ErrWrongParticipant = errors.New("token does not belong to the local participant")

	// ErrGenerateToken is returned when token generation fails.
	ErrGenerateToken = errors.New("failed to generate token")
)
