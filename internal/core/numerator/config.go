// Package numerator provides the identifier sequencing contracts and the
// Sequencer that issues format-constrained identifiers against a history.
package numerator

import (
	"fmt"
	"strings"

	"idforge/internal/core/numerator/checkdigit"
	"idforge/internal/core/numerator/increment"
)

// Strategy defines how the next identifier body is produced.
type Strategy int

const (
	// Sequential increments the body. Numeric-only bodies count up and wrap,
	// alpha+numeric bodies carry into the alpha run.
	Sequential Strategy = iota

	// Random draws the body from an alphabet and retries against history
	// until the candidate has not been issued before.
	Random
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sequential":
		return Sequential, nil
	case "random":
		return Random, nil
	default:
		return Sequential, fmt.Errorf("unknown numbering strategy %q", name)
	}
}

// RandomConfig configures the Random strategy.
type RandomConfig struct {
	// Length is the number of random symbols (default 5).
	Length int
	// Alphabet is the symbol set (default ABCDEFGHKMNPRTUVWXYZ2346789).
	Alphabet string
}

// Spec describes one identifier type. It is immutable once a Sequencer is built from it.
type Spec struct {
	// Name is the type tag stored with every issued identifier.
	Name string

	// Prefix is a literal added in front of the body (e.g. "REQ").
	Prefix string

	// PrefixLayout renders the prefix from the clock using a Go time layout
	// (e.g. "20060102"). When set it takes precedence over Prefix and a change
	// of the rendered prefix restarts the body from the seed.
	PrefixLayout string

	// Body is a sequence of fixed-width tokens: `[A-Z]{n}`, `[0-9]{n}` or `\d{n}`.
	// Ignored by the Random strategy.
	Body string

	// Separator is an optional single character placed between display groups.
	Separator string

	// CheckDigit selects the trailing check digit.
	CheckDigit checkdigit.Config

	// Seed is the body value before the first increment. Defaults to A...A0...0.
	Seed string

	Strategy Strategy

	// Overflow applies to numeric-only bodies that reach their maximum.
	Overflow increment.Overflow

	Random RandomConfig
}

// Validate checks that the spec can be used to build a Sequencer.
func (s Spec) Validate() error {
	_, err := s.compile(nil)
	return err
}
