package brain

import "errors"

// Session operation errors. They surface as PhaseResult.Error text.
var (
	ErrEmptyIdentifier = errors.New("identifier is required")
	ErrNotFound        = errors.New("token not found")
	ErrDuplicate       = errors.New("already on watchlist")
	ErrEmptyPool       = errors.New("no candidates to screen, run discovery first")
)
