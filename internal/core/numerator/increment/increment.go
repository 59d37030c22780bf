// Package increment advances fixed-width identifier bodies.
//
// Numeric segments count 1 .. 10^w-1 and then wrap to 1; zero is only ever the
// seed state. Alphanumeric bodies carry into their alphabetic segment, which
// behaves like a base-26 odometer.
package increment

import (
	"fmt"
	"strconv"

	"idforge/internal/core/apperror"
	"idforge/internal/core/numerator/segment"
)

// Overflow decides what a numeric-only body does once it reaches its maximum.
type Overflow int

const (
	// Wrap restarts the body at 1.
	Wrap Overflow = iota
	// Fail raises SEQUENCE_EXHAUSTED.
	Fail
)

// ParseOverflow maps a configuration name to an Overflow policy.
func ParseOverflow(name string) (Overflow, error) {
	switch name {
	case "", "wrap":
		return Wrap, nil
	case "fail":
		return Fail, nil
	default:
		return Wrap, fmt.Errorf("unknown overflow policy %q", name)
	}
}

// MaxNumeric returns the largest value a numeric segment of the given width can hold.
func MaxNumeric(width int) uint64 {
	var max uint64
	for i := 0; i < width; i++ {
		max = max*10 + 9
	}
	return max
}

// Numeric returns the value following segment, keeping its width.
// When segment holds the width's maximum the result wraps to 1 under Wrap and
// fails under Fail.
func Numeric(seg string, overflow Overflow) (string, error) {
	v, max, err := parseNumeric(seg)
	if err != nil {
		return "", err
	}

	var next uint64
	switch {
	case v < max:
		next = v + 1
	case v == max && overflow == Wrap:
		next = 1
	case v == max:
		return "", apperror.NewSequenceExhausted(seg)
	default:
		return "", unexpected(seg)
	}
	return fmt.Sprintf("%0*d", len(seg), next), nil
}

// AtMax reports whether a numeric segment holds its width's maximum value.
func AtMax(seg string) (bool, error) {
	v, max, err := parseNumeric(seg)
	if err != nil {
		return false, err
	}
	return v == max, nil
}

func parseNumeric(seg string) (uint64, uint64, error) {
	if seg == "" || len(seg) > segment.MaxNumericWidth {
		return 0, 0, unexpected(seg)
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, 0, unexpected(seg)
		}
	}
	v, err := strconv.ParseUint(seg, 10, 64)
	if err != nil {
		return 0, 0, unexpected(seg)
	}
	max := MaxNumeric(len(seg))
	if v > max {
		return 0, 0, unexpected(seg)
	}
	return v, max, nil
}

func unexpected(seg string) error {
	return apperror.NewFormatMessage(fmt.Sprintf("Unexpected numeric sequence. Got %q", seg)).
		WithDetail("identifier", seg)
}
