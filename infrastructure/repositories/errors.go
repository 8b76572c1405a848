package repositories

import "fmt"

// ErrSnapshotMismatch occurs when a batch mixes records of different snapshots.
type ErrSnapshotMismatch struct {
	Expected int64
	Actual   int64
}

func (e ErrSnapshotMismatch) Error() string {
	return fmt.Sprintf("snapshot ID mismatch: batch belongs to snapshot %d, but record has snapshot ID %d", e.Expected, e.Actual)
}
