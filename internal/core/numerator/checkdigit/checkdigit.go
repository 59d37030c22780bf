// Package checkdigit computes and verifies trailing check digits.
//
// Two families are supported: Luhn (Mod10), optionally applied over the ordinal
// codes of every character so alphanumeric bodies can carry a digit, and the
// plain modulus residue (ModulusN). All of them share the Algorithm contract so
// the sequencer dispatches through one interface.
package checkdigit

import (
	"fmt"
	"strings"

	"idforge/internal/core/apperror"
)

// Kind selects a check digit algorithm.
type Kind int

const (
	// None appends nothing.
	None Kind = iota
	// Mod10 is the Luhn algorithm over decimal digits.
	Mod10
	// Mod10Ordinal is Luhn over the ordinal codes of every character.
	Mod10Ordinal
	// Modulus appends int(partial) mod N, zero padded.
	Modulus
)

var kindNames = map[Kind]string{
	None:         "none",
	Mod10:        "mod10",
	Mod10Ordinal: "mod10_ordinal",
	Modulus:      "modulus",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a configuration name to a Kind. "luhn" is accepted for Mod10.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "mod10", "luhn":
		return Mod10, nil
	case "mod10_ordinal", "luhn_ordinal":
		return Mod10Ordinal, nil
	case "modulus", "mod_n":
		return Modulus, nil
	default:
		return None, fmt.Errorf("unknown check digit kind %q", name)
	}
}

// Algorithm is the capability set every check digit strategy provides.
type Algorithm interface {
	// Calculate returns the check digit for a partial identifier.
	Calculate(partial string) (string, error)
	// IsValid reports whether the trailing check digit of full is correct.
	IsValid(full string) bool
	// Remove splits full into its partial identifier and check digit,
	// failing with CHECK_DIGIT_ERROR when the digit does not match.
	Remove(full string) (partial, digit string, err error)
	// Length is the number of characters the check digit occupies.
	Length() int
}

// Config is the tagged variant selecting an algorithm and its parameters.
type Config struct {
	Kind Kind
	// Modulus is only read for Kind == Modulus.
	Modulus int
}

// Algorithm builds the algorithm described by c.
func (c Config) Algorithm() (Algorithm, error) {
	switch c.Kind {
	case None:
		return noCheckDigit{}, nil
	case Mod10:
		return luhn{digitsOf: decimalDigits, expand: digitString}, nil
	case Mod10Ordinal:
		return luhn{digitsOf: ordinalDigits, expand: ordinalString}, nil
	case Modulus:
		m, err := NewModulus(c.Modulus)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, apperror.NewConfiguration(fmt.Sprintf("unsupported check digit kind %d", int(c.Kind)))
	}
}

// Length returns the width of the check digit described by c, or 0 when it is invalid.
func (c Config) Length() int {
	alg, err := c.Algorithm()
	if err != nil {
		return 0
	}
	return alg.Length()
}

// Calculate is a shortcut for building the algorithm and calculating the digit.
func Calculate(partial string, c Config) (string, error) {
	alg, err := c.Algorithm()
	if err != nil {
		return "", err
	}
	return alg.Calculate(partial)
}

// remove implements Algorithm.Remove for any algorithm of fixed length.
func remove(alg Algorithm, full string) (string, string, error) {
	n := alg.Length()
	if len(full) <= n {
		return "", "", apperror.NewCheckDigit(full, fmt.Sprintf("check digit not found in %q", full))
	}
	partial, digit := full[:len(full)-n], full[len(full)-n:]
	want, err := alg.Calculate(partial)
	if err != nil {
		return "", "", err
	}
	if want != digit {
		return "", "", apperror.NewCheckDigit(full,
			fmt.Sprintf("invalid check digit for %q, expected %s got %s", full, want, digit))
	}
	return partial, digit, nil
}

type noCheckDigit struct{}

func (noCheckDigit) Calculate(string) (string, error) { return "", nil }
func (noCheckDigit) IsValid(string) bool              { return true }
func (noCheckDigit) Length() int                      { return 0 }
func (noCheckDigit) Remove(full string) (string, string, error) {
	return full, "", nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
