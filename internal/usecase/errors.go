package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrAmbiguousMerge        = errors.New("ambiguous merge target")
	ErrTooManyRowErrors      = errors.New("row error ceiling exceeded")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
