package numerator

import (
	"context"
	"time"

	"idforge/internal/core/numerator/checkdigit"
)

// MockHistory is a test implementation of History.
// Use in unit tests to avoid database dependencies.
type MockHistory struct {
	FindLastFunc func(ctx context.Context, typeTag string) (string, bool, error)
	CreateFunc   func(ctx context.Context, identifier, typeTag string, createdAt time.Time) error
	ExistsFunc   func(ctx context.Context, identifier string) (bool, error)
}

// FindLast implements History.
func (m *MockHistory) FindLast(ctx context.Context, typeTag string) (string, bool, error) {
	if m.FindLastFunc != nil {
		return m.FindLastFunc(ctx, typeTag)
	}
	return "", false, nil
}

// Create implements History.
func (m *MockHistory) Create(ctx context.Context, identifier, typeTag string, createdAt time.Time) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, identifier, typeTag, createdAt)
	}
	return nil
}

// Exists implements History.
func (m *MockHistory) Exists(ctx context.Context, identifier string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, identifier)
	}
	return false, nil
}

// MockGenerator is a test implementation of Generator.
type MockGenerator struct {
	NextFunc       func(ctx context.Context, typeName string) (string, error)
	CurrentFunc    func(ctx context.Context, typeName string) (string, error)
	ValidateFunc   func(ctx context.Context, typeName, identifier string) (bool, error)
	TypesFunc      func() []string
	CheckDigitFunc func(partial string, cfg checkdigit.Config) (string, error)
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, typeName string) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, typeName)
	}
	// Default: return predictable mock identifier
	return "MOCK00001", nil
}

// Current implements Generator.
func (m *MockGenerator) Current(ctx context.Context, typeName string) (string, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx, typeName)
	}
	return "MOCK00000", nil
}

// Validate implements Generator.
func (m *MockGenerator) Validate(ctx context.Context, typeName, identifier string) (bool, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, typeName, identifier)
	}
	return true, nil
}

// Types implements Generator.
func (m *MockGenerator) Types() []string {
	if m.TypesFunc != nil {
		return m.TypesFunc()
	}
	return []string{"mock"}
}

// CheckDigit implements Generator.
func (m *MockGenerator) CheckDigit(partial string, cfg checkdigit.Config) (string, error) {
	if m.CheckDigitFunc != nil {
		return m.CheckDigitFunc(partial, cfg)
	}
	return checkdigit.Calculate(partial, cfg)
}

// Ensure compile-time interface compliance.
var (
	_ History   = (*MockHistory)(nil)
	_ Generator = (*MockGenerator)(nil)
)
