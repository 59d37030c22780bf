package checkdigit

import (
	"fmt"
	"math/big"
	"strconv"

	"idforge/internal/core/apperror"
)

// ModulusN appends the residue of the partial identifier, read as an integer,
// modulo N. The residue is zero padded to the width of N-1, so modulus 13
// yields a two character check digit.
type ModulusN struct {
	modulus int
	width   int
}

// NewModulus creates a modulus check digit. modulus must be at least 2.
func NewModulus(modulus int) (*ModulusN, error) {
	if modulus < 2 {
		return nil, apperror.NewConfiguration(fmt.Sprintf("check digit modulus must be at least 2, got %d", modulus))
	}
	return &ModulusN{
		modulus: modulus,
		width:   len(strconv.Itoa(modulus - 1)),
	}, nil
}

// Modulus returns N.
func (m *ModulusN) Modulus() int { return m.modulus }

// Length implements Algorithm.
func (m *ModulusN) Length() int { return m.width }

// Calculate implements Algorithm.
func (m *ModulusN) Calculate(partial string) (string, error) {
	if !isDigits(partial) {
		return "", apperror.NewCheckDigit(partial,
			fmt.Sprintf("modulus check digit needs a numeric identifier, got %q", partial))
	}
	value, ok := new(big.Int).SetString(partial, 10)
	if !ok {
		return "", apperror.NewCheckDigit(partial, fmt.Sprintf("cannot read %q as an integer", partial))
	}
	residue := new(big.Int).Mod(value, big.NewInt(int64(m.modulus)))
	return fmt.Sprintf("%0*d", m.width, residue.Int64()), nil
}

// IsValid implements Algorithm.
func (m *ModulusN) IsValid(full string) bool {
	_, _, err := remove(m, full)
	return err == nil
}

// Remove implements Algorithm.
func (m *ModulusN) Remove(full string) (string, string, error) {
	return remove(m, full)
}
