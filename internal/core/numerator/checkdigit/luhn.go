package checkdigit

import (
	"fmt"
	"strconv"
	"strings"

	"idforge/internal/core/apperror"
)

// luhn is parameterised by how a partial identifier is expanded into a digit
// string and how a number is broken into the values summed by the checksum.
// Mod10 uses plain decimal digits for both. Mod10Ordinal first replaces every
// character by its ordinal code and then sums the ordinal codes of the resulting
// digit characters, so "AAA0001" gets check digit 5.
type luhn struct {
	expand   func(partial string) (string, error)
	digitsOf func(n int) []int
}

func (l luhn) Length() int { return 1 }

func (l luhn) Calculate(partial string) (string, error) {
	s, err := l.expand(partial)
	if err != nil {
		return "", err
	}
	sum := l.checksum(s + "0")
	if sum == 0 {
		return "0", nil
	}
	return strconv.Itoa(10 - sum), nil
}

func (l luhn) IsValid(full string) bool {
	_, _, err := remove(l, full)
	return err == nil
}

func (l luhn) Remove(full string) (string, string, error) {
	return remove(l, full)
}

// checksum walks s right to left, adding every odd position as is and the
// digits of twice every even position.
func (l luhn) checksum(s string) int {
	values := make([]int, 0, len(s))
	for i := 0; i < len(s); i++ {
		values = append(values, l.value(s[i]))
	}

	sum := 0
	for pos, i := 0, len(values)-1; i >= 0; pos, i = pos+1, i-1 {
		if pos%2 == 0 {
			sum += values[i]
			continue
		}
		for _, d := range l.digitsOf(values[i] * 2) {
			sum += d
		}
	}
	return sum % 10
}

// value maps one character of the expanded string the same way digitsOf maps
// the characters of a number.
func (l luhn) value(c byte) int {
	return l.digitsOf(int(c - '0'))[0]
}

func digitString(partial string) (string, error) {
	if !isDigits(partial) {
		return "", apperror.NewCheckDigit(partial,
			fmt.Sprintf("mod10 check digit needs a numeric identifier, got %q", partial))
	}
	return partial, nil
}

func ordinalString(partial string) (string, error) {
	if partial == "" {
		return "", apperror.NewCheckDigit(partial, "mod10 ordinal check digit needs a non-empty identifier")
	}
	var b strings.Builder
	for _, r := range partial {
		b.WriteString(strconv.Itoa(int(r)))
	}
	return b.String(), nil
}

func decimalDigits(n int) []int {
	s := strconv.Itoa(n)
	out := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = int(s[i] - '0')
	}
	return out
}

func ordinalDigits(n int) []int {
	s := strconv.Itoa(n)
	out := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = int(s[i])
	}
	return out
}
