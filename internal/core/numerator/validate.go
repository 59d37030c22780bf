package numerator

import "idforge/internal/core/numerator/checkdigit"

// Validate reports whether identifier is a well-formed, issued identifier of
// spec: pattern, prefix, separators and check digit all match. It never
// touches history.
func Validate(identifier string, spec Spec) bool {
	f, err := spec.compile(nil)
	if err != nil {
		return false
	}
	return f.valid(identifier)
}

// CalculateCheckDigit returns the check digit of a partial identifier.
func CalculateCheckDigit(partial string, cfg checkdigit.Config) (string, error) {
	return checkdigit.Calculate(partial, cfg)
}
