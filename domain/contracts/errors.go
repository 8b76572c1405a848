package contracts

import "errors"

// Common errors for domain contracts
var (
	// ErrSnapshotNotFound is returned when no snapshot has the requested id.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotFinished is returned when completing or failing a snapshot
	// that already left the running state.
	ErrSnapshotFinished = errors.New("snapshot already finished")
)
