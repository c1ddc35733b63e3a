package uuidutil

import "github.com/google/uuid"

// New returns a random (v4) UUID for health event ids.
func New() string {
	return uuid.New().String()
}
