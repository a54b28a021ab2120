// Package id provides unique identifier generation for processing runs.
package id

import "github.com/google/uuid"

// Generate creates a new random processing ID (UUIDv4).
func Generate() string {
	return uuid.NewString()
}
