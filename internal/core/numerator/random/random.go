// Package random draws random identifier segments and resolves collisions
// against previously issued identifiers.
package random

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"idforge/internal/core/apperror"
)

const (
	// DefaultAlphabet leaves out symbols that are easy to confuse on paper: 0 O I 1 L 5 S.
	DefaultAlphabet = "ABCDEFGHKMNPRTUVWXYZ2346789"
	// DefaultLength is the number of random symbols drawn when none is configured.
	DefaultLength = 5
	// maxLength mirrors the nanoid size limit.
	maxLength = 256
)

// Source draws n symbols from alphabet.
type Source func(alphabet string, n int) (string, error)

// NanoID is the default Source, backed by a cryptographically secure nanoid draw.
func NanoID(alphabet string, n int) (string, error) {
	id, err := gonanoid.Generate(alphabet, n)
	if err != nil {
		return "", fmt.Errorf("failed to generate random segment: %w", err)
	}
	return id, nil
}

// Generator draws fixed-length segments from an alphabet.
type Generator struct {
	alphabet string
	length   int
	source   Source
}

// NewGenerator creates a generator. An empty alphabet or a zero length selects the
// defaults; a nil source selects NanoID.
func NewGenerator(alphabet string, length int, source Source) (*Generator, error) {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if length == 0 {
		length = DefaultLength
	}
	if length < 1 || length > maxLength {
		return nil, apperror.NewConfiguration(fmt.Sprintf("random length must be between 1 and %d, got %d", maxLength, length))
	}
	if n := distinct(alphabet); n < 2 {
		return nil, apperror.NewConfiguration(fmt.Sprintf("random alphabet needs at least 2 distinct symbols, got %d", n))
	}
	if source == nil {
		source = NanoID
	}
	return &Generator{alphabet: alphabet, length: length, source: source}, nil
}

// Alphabet returns the symbols segments are drawn from.
func (g *Generator) Alphabet() string { return g.alphabet }

// Length returns the number of symbols per segment.
func (g *Generator) Length() int { return g.length }

// Generate draws one segment.
func (g *Generator) Generate() (string, error) {
	s, err := g.source(g.alphabet, g.length)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(s) != g.length {
		return "", apperror.NewFormatMessage(fmt.Sprintf("random source returned %q, want %d symbols", s, g.length))
	}
	return s, nil
}

// Space is the number of distinct segments, alphabet_size^length, saturated at MaxInt64.
func (g *Generator) Space() int64 {
	base := int64(distinct(g.alphabet))
	space := int64(1)
	for i := 0; i < g.length; i++ {
		if space > math.MaxInt64/base {
			return math.MaxInt64
		}
		space *= base
	}
	return space
}

// Render turns a random segment into a full candidate identifier.
type Render func(segment string) (string, error)

// Exists reports whether a candidate has already been issued.
type Exists func(ctx context.Context, candidate string) (bool, error)

// Resolver draws candidates until one is not present in history.
type Resolver struct {
	gen *Generator
}

// NewResolver creates a resolver over gen.
func NewResolver(gen *Generator) *Resolver {
	return &Resolver{gen: gen}
}

// Resolve returns the first rendered candidate for which exists reports false.
// It gives up with DUPLICATE_EXHAUSTED once the number of duplicates reaches the
// size of the segment space.
func (r *Resolver) Resolve(ctx context.Context, render Render, exists Exists) (string, error) {
	limit := r.gen.Space()
	var duplicates int64
	for duplicates < limit {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		seg, err := r.gen.Generate()
		if err != nil {
			return "", err
		}
		candidate, err := render(seg)
		if err != nil {
			return "", err
		}

		found, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check candidate %s: %w", candidate, err)
		}
		if !found {
			return candidate, nil
		}
		duplicates++
	}
	return "", apperror.NewDuplicateExhausted(duplicates)
}

func distinct(alphabet string) int {
	seen := make(map[rune]struct{}, len(alphabet))
	for _, r := range alphabet {
		seen[r] = struct{}{}
	}
	return len(seen)
}
