package ledger

import "errors"

var (
	// ErrNothingToUndo is returned when the person has no active transaction.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned when the person has no undone transaction.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrInvalidInput is returned for malformed amounts, types or descriptions.
	ErrInvalidInput = errors.New("invalid input")
)
