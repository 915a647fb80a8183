package domain

import "github.com/google/uuid"

// ValidID reports whether id is a UUID in the canonical 36 character form,
// the only form the uuid columns accept.
func ValidID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}
