package numerator

import (
	"context"

	"idforge/internal/core/numerator/checkdigit"
)

// Generator issues identifiers for configured types.
// This is the domain contract - the issuing service lives in the infrastructure layer.
type Generator interface {
	// Next advances the type's sequence and returns the recorded identifier.
	Next(ctx context.Context, typeName string) (string, error)

	// Current returns the last identifier of the type, or "" when a random
	// type has not issued anything yet.
	Current(ctx context.Context, typeName string) (string, error)

	// Validate reports whether identifier is well-formed for the type.
	Validate(ctx context.Context, typeName, identifier string) (bool, error)

	// Types lists the configured type names.
	Types() []string

	// CheckDigit calculates a check digit for a partial identifier.
	CheckDigit(partial string, cfg checkdigit.Config) (string, error)
}
