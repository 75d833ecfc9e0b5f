// Package idgen produces correlation ids for command envelopes.
package idgen

import "github.com/google/uuid"

// Generator implements the IDGen port with random UUIDs.
type Generator struct{}

// NewID returns a new unique id.
func (Generator) NewID() string {
	return uuid.NewString()
}
