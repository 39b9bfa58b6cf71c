package utils

import "github.com/google/uuid"

// NewID returns an opaque unique identifier for tasks, items, log entries and users.
func NewID() string {
	return uuid.NewString()
}
