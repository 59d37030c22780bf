// Package segment splits formatted identifiers into their logical segments
// and describes the fixed-width structure of an identifier body.
package segment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the character class of a body token.
type Kind int

const (
	// Alpha is a run of uppercase letters A-Z.
	Alpha Kind = iota
	// Numeric is a run of decimal digits; leading zeros are significant.
	Numeric
	// Random is a run of symbols drawn from an explicit alphabet.
	Random
)

// String returns the token kind name.
func (k Kind) String() string {
	switch k {
	case Alpha:
		return "alpha"
	case Numeric:
		return "numeric"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is one fixed-width segment of a body.
type Token struct {
	Kind  Kind
	Width int
	// Alphabet is only set for Random tokens.
	Alphabet string
}

// Layout is the ordered list of tokens that make up an identifier body.
type Layout struct {
	Tokens []Token
}

// MaxNumericWidth bounds numeric runs so their value fits in a uint64.
const MaxNumericWidth = 18

var tokenRe = regexp.MustCompile(`^(\[A-Z\]|\[0-9\]|\\d)(?:\{(\d+)\})?`)

// ParseLayout parses a body pattern made of `[A-Z]{n}`, `[0-9]{n}` and `\d{n}` tokens,
// e.g. `[A-Z]{3}[0-9]{4}`. Optional ^ and $ anchors are ignored.
func ParseLayout(pattern string) (Layout, error) {
	rest := strings.TrimSuffix(strings.TrimPrefix(pattern, "^"), "$")
	if rest == "" {
		return Layout{}, fmt.Errorf("empty body pattern")
	}

	var layout Layout
	for rest != "" {
		m := tokenRe.FindStringSubmatch(rest)
		if m == nil {
			return Layout{}, fmt.Errorf("unsupported body pattern %q near %q", pattern, rest)
		}
		width := 1
		if m[2] != "" {
			w, err := strconv.Atoi(m[2])
			if err != nil || w < 1 {
				return Layout{}, fmt.Errorf("invalid width %q in body pattern %q", m[2], pattern)
			}
			width = w
		}
		kind := Numeric
		if m[1] == "[A-Z]" {
			kind = Alpha
		}
		layout.Tokens = append(layout.Tokens, Token{Kind: kind, Width: width})
		rest = rest[len(m[0]):]
	}
	return layout, nil
}

// RandomLayout returns a single-token layout of length symbols drawn from alphabet.
func RandomLayout(alphabet string, length int) Layout {
	return Layout{Tokens: []Token{{Kind: Random, Width: length, Alphabet: alphabet}}}
}

// Width is the total number of characters in the body.
func (l Layout) Width() int {
	n := 0
	for _, t := range l.Tokens {
		n += t.Width
	}
	return n
}

// Lengths returns the width of every token, in order.
func (l Layout) Lengths() []int {
	lengths := make([]int, len(l.Tokens))
	for i, t := range l.Tokens {
		lengths[i] = t.Width
	}
	return lengths
}

// AlphaWidth is the width of the leading alphabetic run.
func (l Layout) AlphaWidth() int {
	n := 0
	for _, t := range l.Tokens {
		if t.Kind != Alpha {
			break
		}
		n += t.Width
	}
	return n
}

// IsSequential reports whether the layout is zero or more alpha tokens followed by
// one or more numeric tokens, the only shape the incrementers understand.
func (l Layout) IsSequential() bool {
	seenNumeric := false
	for _, t := range l.Tokens {
		switch t.Kind {
		case Alpha:
			if seenNumeric {
				return false
			}
		case Numeric:
			seenNumeric = true
		default:
			return false
		}
	}
	return seenNumeric
}

// IsNumeric reports whether every token is numeric.
func (l Layout) IsNumeric() bool {
	if len(l.Tokens) == 0 {
		return false
	}
	for _, t := range l.Tokens {
		if t.Kind != Numeric {
			return false
		}
	}
	return true
}

// Split cuts a compact body into its alpha and numeric runs.
// The body must already have the layout's width.
func (l Layout) Split(body string) (alpha, numeric string) {
	n := l.AlphaWidth()
	if n > len(body) {
		n = len(body)
	}
	return body[:n], body[n:]
}

// Expr returns the unanchored regular expression for the body, e.g. `[A-Z]{3}[0-9]{4}`.
func (l Layout) Expr() string {
	var b strings.Builder
	for _, t := range l.Tokens {
		b.WriteString(t.expr())
	}
	return b.String()
}

// TokenExprs returns the expression of every token, in order.
func (l Layout) TokenExprs() []string {
	out := make([]string, len(l.Tokens))
	for i, t := range l.Tokens {
		out[i] = t.expr()
	}
	return out
}

// Match reports whether a compact body matches the layout exactly.
func (l Layout) Match(body string) bool {
	re, err := regexp.Compile("^" + l.Expr() + "$")
	if err != nil {
		return false
	}
	return re.MatchString(body)
}

func (t Token) expr() string {
	switch t.Kind {
	case Alpha:
		return fmt.Sprintf("[A-Z]{%d}", t.Width)
	case Numeric:
		return fmt.Sprintf("[0-9]{%d}", t.Width)
	default:
		return fmt.Sprintf("[%s]{%d}", classEscape(t.Alphabet), t.Width)
	}
}

func classEscape(alphabet string) string {
	var b strings.Builder
	for _, r := range alphabet {
		if strings.ContainsRune(`\]^-[`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
