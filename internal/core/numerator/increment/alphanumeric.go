package increment

import (
	"fmt"

	"idforge/internal/core/apperror"
	"idforge/internal/core/numerator/segment"
)

// Alphanumeric advances a two-part body, an alpha run followed by a numeric run.
// The alpha run only moves when the current numeric run is at its maximum;
// the numeric run then wraps to 1.
func Alphanumeric(alpha, numeric string) (string, string, error) {
	atMax, err := AtMax(numeric)
	if err != nil {
		return "", "", err
	}

	nextNumeric, err := Numeric(numeric, Wrap)
	if err != nil {
		return "", "", err
	}
	if !atMax {
		if err := checkAlpha(alpha); err != nil {
			return "", "", err
		}
		return alpha, nextNumeric, nil
	}

	nextAlpha, err := Alpha(alpha)
	if err != nil {
		return "", "", err
	}
	return nextAlpha, nextNumeric, nil
}

// Alpha increments an uppercase run as a base-26 odometer: the rightmost letter
// below Z moves up by one and every Z to its right rolls over to A.
// A run made only of Z has nowhere to go and fails with SEQUENCE_EXHAUSTED.
func Alpha(alpha string) (string, error) {
	if err := checkAlpha(alpha); err != nil {
		return "", err
	}

	letters := []byte(alpha)
	for i := len(letters) - 1; i >= 0; i-- {
		if letters[i] < 'Z' {
			letters[i]++
			return string(letters), nil
		}
		letters[i] = 'A'
	}
	return "", apperror.NewSequenceExhausted(alpha)
}

// Body advances a compact sequential body laid out by layout.
// Bodies without an alpha run use overflow; bodies with one always carry.
func Body(layout segment.Layout, body string, overflow Overflow) (string, error) {
	if !layout.IsSequential() {
		return "", apperror.NewConfiguration(fmt.Sprintf("body pattern %s cannot be incremented", layout.Expr()))
	}
	if len(body) != layout.Width() {
		return "", apperror.NewFormat(body, layout.Expr())
	}

	alpha, numeric := layout.Split(body)
	if alpha == "" {
		return Numeric(numeric, overflow)
	}

	nextAlpha, nextNumeric, err := Alphanumeric(alpha, numeric)
	if err != nil {
		return "", err
	}
	return nextAlpha + nextNumeric, nil
}

func checkAlpha(alpha string) error {
	if alpha == "" {
		return apperror.NewFormatMessage("empty alpha segment")
	}
	for i := 0; i < len(alpha); i++ {
		if alpha[i] < 'A' || alpha[i] > 'Z' {
			return apperror.NewFormatMessage(fmt.Sprintf("Unexpected alpha sequence. Got %q", alpha)).
				WithDetail("identifier", alpha)
		}
	}
	return nil
}
