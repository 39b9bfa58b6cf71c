package store

import "errors"

var (
	// ErrValidationFailed marks a rejected write with a missing or malformed value.
	ErrValidationFailed = errors.New("validation failed")
	// ErrPermissionDenied marks a write attempted by someone other than the owner.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound marks a reference to a task or item that is not in the snapshot.
	ErrNotFound = errors.New("not found")
	// ErrPersistenceCorrupt marks a stored blob that could not be decoded.
	ErrPersistenceCorrupt = errors.New("persisted data is corrupt")
	// ErrNoActiveGesture is returned when hovering without a picked-up task.
	ErrNoActiveGesture = errors.New("no drag gesture in progress")
)
