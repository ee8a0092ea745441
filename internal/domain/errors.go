package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated is returned when the caller has no valid session
	ErrUnauthenticated = errors.New("authentication required")

	// ErrConflict is returned when a concurrent write wins a race
	ErrConflict = errors.New("conflict occurred")

	// ErrForbidden is returned when an authenticated caller lacks the role or ownership
	ErrForbidden = errors.New("forbidden")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

var (
	// ErrDuplicateReview is returned when a user reviews the same product twice
	ErrDuplicateReview = fmt.Errorf("%w: you have already reviewed this product", ErrAlreadyExists)

	// ErrDuplicateFlag is returned when a user flags the same review twice
	ErrDuplicateFlag = fmt.Errorf("%w: you have already flagged this review", ErrAlreadyExists)

	// ErrBusinessReplyForbidden is returned when a non-admin posts a business reply
	ErrBusinessReplyForbidden = fmt.Errorf("%w: only administrators can add business replies", ErrForbidden)
)
