package shopping

import "github.com/google/uuid"

// IDGenerator produces identifiers that are unique within a collection.
type IDGenerator interface {
	NewID() string
}

// TimeIDs generates UUIDv7 identifiers: a millisecond wall-clock prefix,
// a monotonic sequence for ids minted within the same millisecond and a
// random tail.
type TimeIDs struct{}

// NewID returns a fresh time-ordered identifier.
func (TimeIDs) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.NewString()
	}
	return id.String()
}
