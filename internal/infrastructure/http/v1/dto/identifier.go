package dto

import (
	"idforge/internal/core/numerator/checkdigit"
)

// IdentifierResponse carries one issued identifier.
type IdentifierResponse struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// TypesResponse lists the configured identifier types.
type TypesResponse struct {
	Types []string `json:"types"`
}

// ValidateRequest asks whether identifier is well-formed for a type.
type ValidateRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// ValidateResponse reports the outcome of a validation.
type ValidateResponse struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
	Valid      bool   `json:"valid"`
}

// CheckDigitRequest computes a check digit for an arbitrary partial identifier.
type CheckDigitRequest struct {
	// Kind is one of mod10 (luhn), mod10_ordinal, modulus.
	Kind    string `json:"kind" binding:"required"`
	Modulus int    `json:"modulus"`
	Partial string `json:"partial" binding:"required"`
}

// Config converts the request into a check digit configuration.
func (r CheckDigitRequest) Config() (checkdigit.Config, error) {
	kind, err := checkdigit.ParseKind(r.Kind)
	if err != nil {
		return checkdigit.Config{}, err
	}
	return checkdigit.Config{Kind: kind, Modulus: r.Modulus}, nil
}

// CheckDigitResponse carries the computed check digit and the full identifier.
type CheckDigitResponse struct {
	Partial    string `json:"partial"`
	CheckDigit string `json:"checkDigit"`
	Full       string `json:"full"`
}
