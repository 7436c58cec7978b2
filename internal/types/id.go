// README: Shared identifier type used across modules.
package types

import "github.com/google/uuid"

type ID string

// NewID returns a random identifier in the canonical UUID text form.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}

func IDPtr(id ID) *ID {
	return &id
}
