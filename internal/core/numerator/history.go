package numerator

import (
	"context"
	"time"
)

// History is the persistence boundary for issued identifiers.
// Implementations live in the infrastructure layer.
//
// Create is the only synchronization point between concurrent issuers:
// implementations must enforce uniqueness of the identifier text and report a
// violation as an apperror with code DUPLICATE_ENTRY.
type History interface {
	// FindLast returns the most recently created identifier of a type.
	// found is false when the type has no history yet.
	FindLast(ctx context.Context, typeTag string) (identifier string, found bool, err error)

	// Create records an issued identifier.
	Create(ctx context.Context, identifier, typeTag string, createdAt time.Time) error

	// Exists reports whether an identifier has already been issued.
	Exists(ctx context.Context, identifier string) (bool, error)
}
