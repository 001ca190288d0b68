package tfidf

import "errors"

var (
	// ErrInvalidInput is returned for empty corpora, mismatched parallel
	// slices and otherwise malformed documents.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration is returned for out-of-range parameters such as
	// a non-positive length threshold.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotFitted is returned by transform-family calls on a model that has
	// not been fitted yet.
	ErrNotFitted = errors.New("model not fitted")
)
