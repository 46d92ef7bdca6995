package store

import "errors"

// Sentinel errors for expected domain outcomes. Handlers classify these
// with errors.Is; anything else is treated as an internal store failure.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means a status change was attempted from a
	// state the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrWrongReportType means an operation was attempted against a
	// report of the wrong type (claiming a lost report, marking a found
	// report as found).
	ErrWrongReportType = errors.New("wrong report type")

	// ErrAlreadyResolved means the report was resolved by a concurrent
	// or earlier call.
	ErrAlreadyResolved = errors.New("report already resolved")

	// ErrAlreadyReceived means the claim's hand-off was already recorded.
	ErrAlreadyReceived = errors.New("claim already marked received")
)
