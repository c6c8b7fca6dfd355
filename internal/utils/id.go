package utils

import "github.com/google/uuid"

// NewID returns a random, never reused identifier.
func NewID() string {
	return uuid.NewString()
}
