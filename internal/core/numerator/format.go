package numerator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"idforge/internal/core/apperror"
	"idforge/internal/core/numerator/checkdigit"
	"idforge/internal/core/numerator/random"
	"idforge/internal/core/numerator/segment"
)

// referenceTime is used to measure the width of a prefix layout.
var referenceTime = time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)

// widthTimes cover short and long month and weekday names, single and double
// digit days and hours, so a layout renders at a fixed width only if all agree.
var widthTimes = []time.Time{
	time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2024, time.February, 14, 9, 5, 7, 0, time.UTC),
	time.Date(2024, time.May, 9, 12, 30, 0, 0, time.UTC),
	time.Date(2024, time.September, 30, 13, 45, 59, 0, time.UTC),
	time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
}

// format is the compiled form of a Spec.
type format struct {
	spec        Spec
	layout      segment.Layout
	alg         checkdigit.Algorithm
	gen         *random.Generator
	seed        string
	prefixWidth int
	expr        string
	re          *regexp.Regexp
}

func (s Spec) compile(source random.Source) (*format, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, apperror.NewConfiguration("identifier type name is required")
	}
	if utf8.RuneCountInString(s.Separator) > 1 {
		return nil, apperror.NewConfiguration(fmt.Sprintf("separator must be a single character, got %q", s.Separator))
	}
	if s.Separator != "" && s.PrefixLayout == "" && strings.Contains(s.Prefix, s.Separator) {
		return nil, apperror.NewConfiguration(fmt.Sprintf("prefix %q contains the separator %q", s.Prefix, s.Separator))
	}

	alg, err := s.CheckDigit.Algorithm()
	if err != nil {
		return nil, err
	}
	numericOnly := s.CheckDigit.Kind == checkdigit.Mod10 || s.CheckDigit.Kind == checkdigit.Modulus

	f := &format{spec: s, alg: alg, prefixWidth: len(s.Prefix)}

	switch s.Strategy {
	case Sequential:
		layout, err := segment.ParseLayout(s.Body)
		if err != nil {
			return nil, apperror.NewConfiguration(err.Error()).WithDetail("type", s.Name)
		}
		if !layout.IsSequential() {
			return nil, apperror.NewConfiguration(
				fmt.Sprintf("body %s must be letters followed by digits", layout.Expr()))
		}
		if n := layout.Width() - layout.AlphaWidth(); n > segment.MaxNumericWidth {
			return nil, apperror.NewConfiguration(
				fmt.Sprintf("numeric run of %d digits exceeds the maximum of %d", n, segment.MaxNumericWidth))
		}
		if numericOnly && !layout.IsNumeric() {
			return nil, apperror.NewConfiguration(
				fmt.Sprintf("%s check digit requires a numeric body, got %s", s.CheckDigit.Kind, layout.Expr()))
		}

		seed, _ := segment.Strip(s.Seed, s.Separator)
		if seed == "" {
			alpha := layout.AlphaWidth()
			seed = strings.Repeat("A", alpha) + strings.Repeat("0", layout.Width()-alpha)
		}
		if !layout.Match(seed) {
			return nil, apperror.NewFormat(s.Seed, layout.Expr())
		}
		f.layout, f.seed = layout, seed

	case Random:
		gen, err := random.NewGenerator(s.Random.Alphabet, s.Random.Length, source)
		if err != nil {
			return nil, err
		}
		alphabet := gen.Alphabet()
		for i := 0; i < len(alphabet); i++ {
			if alphabet[i] >= utf8.RuneSelf {
				return nil, apperror.NewConfiguration(fmt.Sprintf("random alphabet %q must be ASCII", alphabet))
			}
		}
		if s.Separator != "" && strings.Contains(alphabet, s.Separator) {
			return nil, apperror.NewConfiguration(fmt.Sprintf("random alphabet contains the separator %q", s.Separator))
		}
		if numericOnly && strings.Trim(alphabet, "0123456789") != "" {
			return nil, apperror.NewConfiguration(
				fmt.Sprintf("%s check digit requires a numeric alphabet, got %q", s.CheckDigit.Kind, alphabet))
		}
		f.gen = gen
		f.layout = segment.RandomLayout(alphabet, gen.Length())

	default:
		return nil, apperror.NewConfiguration(fmt.Sprintf("unsupported strategy %s", s.Strategy))
	}

	if s.PrefixLayout != "" {
		rendered := referenceTime.Format(s.PrefixLayout)
		if _, err := time.Parse(s.PrefixLayout, rendered); err != nil {
			return nil, apperror.NewConfiguration(fmt.Sprintf("invalid prefix layout %q: %v", s.PrefixLayout, err))
		}
		if s.Separator != "" && strings.Contains(rendered, s.Separator) {
			return nil, apperror.NewConfiguration(fmt.Sprintf("prefix layout %q contains the separator %q", s.PrefixLayout, s.Separator))
		}
		for _, at := range widthTimes {
			if n := len(at.Format(s.PrefixLayout)); n != len(rendered) {
				return nil, apperror.NewConfiguration(fmt.Sprintf(
					"prefix layout %q does not render at a fixed width: %q has %d characters, %q has %d",
					s.PrefixLayout, rendered, len(rendered), at.Format(s.PrefixLayout), n))
			}
		}
		f.prefixWidth = len(rendered)
	}

	f.expr = f.pattern()
	re, err := regexp.Compile("^" + f.expr + "$")
	if err != nil {
		return nil, apperror.NewConfiguration(fmt.Sprintf("invalid identifier pattern %s: %v", f.expr, err))
	}
	f.re = re
	return f, nil
}

// pattern builds the expression of a fully rendered identifier.
func (f *format) pattern() string {
	groups := make([]string, 0, len(f.layout.Tokens)+2)
	switch {
	case f.spec.PrefixLayout != "":
		groups = append(groups, fmt.Sprintf(".{%d}", f.prefixWidth))
	case f.spec.Prefix != "":
		groups = append(groups, regexp.QuoteMeta(f.spec.Prefix))
	}
	groups = append(groups, f.layout.TokenExprs()...)
	if n := f.alg.Length(); n > 0 {
		groups = append(groups, fmt.Sprintf("[0-9]{%d}", n))
	}
	return strings.Join(groups, regexp.QuoteMeta(f.spec.Separator))
}

// prefix renders the prefix in effect at now.
func (f *format) prefix(now time.Time) string {
	if f.spec.PrefixLayout != "" {
		return now.Format(f.spec.PrefixLayout)
	}
	return f.spec.Prefix
}

// render appends the check digit to body and lays out prefix, body tokens and
// check digit as separator-joined display groups.
func (f *format) render(prefix, body string) (string, error) {
	digit, err := f.alg.Calculate(body)
	if err != nil {
		return "", err
	}

	lengths := make([]int, 0, len(f.layout.Tokens)+2)
	if prefix != "" {
		lengths = append(lengths, len(prefix))
	}
	lengths = append(lengths, f.layout.Lengths()...)
	if digit != "" {
		lengths = append(lengths, len(digit))
	}
	return segment.Reinsert(prefix+body+digit, lengths, f.spec.Separator)
}

// parse splits an identifier into prefix and body. Identifiers may be given
// with or without their check digit; when present it is verified.
func (f *format) parse(identifier string) (prefix, body string, issued bool, err error) {
	compact, _ := segment.Strip(identifier, f.spec.Separator)
	if len(compact) < f.prefixWidth {
		return "", "", false, apperror.NewFormat(identifier, f.expr)
	}

	prefix, rest := compact[:f.prefixWidth], compact[f.prefixWidth:]
	if err := f.checkPrefix(identifier, prefix); err != nil {
		return "", "", false, err
	}

	width, digits := f.layout.Width(), f.alg.Length()
	if len(rest) != width && (digits == 0 || len(rest) != width+digits) {
		return "", "", false, apperror.NewFormat(identifier, f.expr)
	}
	if !f.layout.Match(rest[:width]) {
		return "", "", false, apperror.NewFormat(identifier, f.expr)
	}

	// seed form, without the check digit
	if len(rest) == width {
		return prefix, rest, digits == 0, nil
	}
	body, _, err = f.alg.Remove(rest)
	if err != nil {
		return "", "", false, err
	}
	return prefix, body, true, nil
}

func (f *format) checkPrefix(identifier, prefix string) error {
	if f.spec.PrefixLayout != "" {
		if _, err := time.Parse(f.spec.PrefixLayout, prefix); err != nil {
			return apperror.NewFormat(identifier, f.expr).WithCause(err)
		}
		return nil
	}
	if prefix != f.spec.Prefix {
		return apperror.NewFormat(identifier, f.expr).WithDetail("prefix", f.spec.Prefix)
	}
	return nil
}

// valid reports whether identifier is exactly what render would produce for it.
func (f *format) valid(identifier string) bool {
	if !f.re.MatchString(identifier) {
		return false
	}
	prefix, body, issued, err := f.parse(identifier)
	if err != nil || !issued {
		return false
	}
	rendered, err := f.render(prefix, body)
	return err == nil && rendered == identifier
}
