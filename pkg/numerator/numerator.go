// Package numerator is the public entry point for embedding the identifier
// engine in another Go program without the HTTP service.
//
//	seq, err := numerator.NewSequencer(ctx, numerator.Spec{
//	    Name:       "sample",
//	    Body:       `[A-Z]{3}[0-9]{4}`,
//	    CheckDigit: numerator.CheckDigit{Kind: numerator.Mod10Ordinal},
//	}, numerator.NewMemoryHistory())
//	id, err := seq.Advance(ctx) // AAA00015
package numerator

import (
	"context"

	core "idforge/internal/core/numerator"
	"idforge/internal/core/numerator/checkdigit"
	"idforge/internal/core/numerator/increment"
	"idforge/internal/core/numerator/random"
	"idforge/internal/infrastructure/storage/memory"
)

type (
	// Spec describes one identifier type.
	Spec = core.Spec
	// RandomConfig configures the Random strategy.
	RandomConfig = core.RandomConfig
	// Strategy selects sequential or random bodies.
	Strategy = core.Strategy
	// Overflow selects what numeric-only bodies do at their maximum.
	Overflow = increment.Overflow
	// CheckDigit selects the trailing check digit.
	CheckDigit = checkdigit.Config
	// CheckDigitKind is the check digit algorithm.
	CheckDigitKind = checkdigit.Kind
	// History is the store of issued identifiers.
	History = core.History
	// Sequencer issues identifiers of one type.
	Sequencer = core.Sequencer
	// Option configures a Sequencer.
	Option = core.Option
	// Clock returns the current time.
	Clock = core.Clock
	// RandomSource draws random symbols.
	RandomSource = random.Source
)

const (
	Sequential = core.Sequential
	Random     = core.Random

	Wrap = increment.Wrap
	Fail = increment.Fail

	None         = checkdigit.None
	Mod10        = checkdigit.Mod10
	Mod10Ordinal = checkdigit.Mod10Ordinal
	Modulus      = checkdigit.Modulus

	// DefaultAlphabet is the random alphabet without ambiguous symbols.
	DefaultAlphabet = random.DefaultAlphabet
)

// NewSequencer builds a Sequencer positioned at the last identifier in history.
func NewSequencer(ctx context.Context, spec Spec, history History, opts ...Option) (*Sequencer, error) {
	return core.NewSequencer(ctx, spec, history, opts...)
}

// WithSeedOverride starts the sequence at value.
func WithSeedOverride(value string) Option { return core.WithSeedOverride(value) }

// WithClock replaces time.Now.
func WithClock(clock Clock) Option { return core.WithClock(clock) }

// WithRandomSource replaces the default random draw.
func WithRandomSource(source RandomSource) Option { return core.WithRandomSource(source) }

// Validate reports whether identifier is a well-formed identifier of spec.
func Validate(identifier string, spec Spec) bool { return core.Validate(identifier, spec) }

// CalculateCheckDigit returns the check digit of a partial identifier.
func CalculateCheckDigit(partial string, cd CheckDigit) (string, error) {
	return core.CalculateCheckDigit(partial, cd)
}

// NewMemoryHistory returns a History that lives in process memory.
func NewMemoryHistory() History { return memory.NewHistoryStore() }
