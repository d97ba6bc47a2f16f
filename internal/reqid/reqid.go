// Package reqid provides per-request correlation ids for proxy logs, as a
// uuid.UUID wrapper type.
package reqid

import "github.com/google/uuid"

// ID is a request correlation id.
type ID uuid.UUID

// New generates a fresh random correlation id.
func New() ID {
	id, err := uuid.NewRandom()
	if err != nil {
		// uuid.NewRandom only fails if the system entropy source is
		// broken; there is no sane recovery at the call sites that need
		// an id for logging, so fall back to the nil id rather than
		// propagating an error through every log call.
		return ID{}
	}
	return ID(id)
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}
