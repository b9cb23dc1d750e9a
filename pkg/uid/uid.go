// Package uid generates identifiers for requests and collection runs.
package uid

import "github.com/google/uuid"

// New returns a random (version 4) UUID.
func New() string {
	return uuid.New().String()
}

// NewOrdered returns a version 7 UUID. Its text form sorts by creation time,
// which keeps run ids in insertion order in every snapshot store.
func NewOrdered() string {
	id, err := uuid.NewV7()
	if err != nil {
		return New()
	}
	return id.String()
}

// IsValid reports whether id is a UUID in canonical text form.
func IsValid(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
