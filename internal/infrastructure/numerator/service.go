// Package numerator provides the identifier issuing service.
// This is the infrastructure layer - it implements core/numerator.Generator on top
// of per-type Sequencers and a shared history store.
package numerator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idforge/internal/core/apperror"
	corenumerator "idforge/internal/core/numerator"
	"idforge/internal/core/numerator/checkdigit"
	"idforge/internal/core/tx"
	"idforge/pkg/logger"
)

var tracer = otel.Tracer("idforge/numerator")

// DefaultDuplicateRetries is how many times Next reloads and retries after
// another issuer recorded the same identifier first.
const DefaultDuplicateRetries = 3

// Option configures a Service.
type Option func(*Service)

// WithTxManager runs every advance inside a transaction.
func WithTxManager(m tx.Manager) Option {
	return func(s *Service) { s.txm = m }
}

// WithDuplicateRetries overrides DefaultDuplicateRetries. Negative values are treated as 0.
func WithDuplicateRetries(n int) Option {
	return func(s *Service) {
		if n < 0 {
			n = 0
		}
		s.retries = n
	}
}

// WithSeedOverride starts typeName at value instead of its recorded history.
func WithSeedOverride(typeName, value string) Option {
	return func(s *Service) { s.overrides[typeName] = value }
}

// WithSequencerOptions passes options to every Sequencer the service builds.
func WithSequencerOptions(opts ...corenumerator.Option) Option {
	return func(s *Service) { s.seqOpts = append(s.seqOpts, opts...) }
}

// sequence holds the Sequencer of one type. mu serializes issuance per type,
// giving every type a single logical position inside the process.
type sequence struct {
	mu   sync.Mutex
	spec corenumerator.Spec
	seq  *corenumerator.Sequencer
	// fresh is set until the first advance of a newly built Sequencer.
	fresh bool
}

// Service issues identifiers for a fixed set of types.
type Service struct {
	history   corenumerator.History
	txm       tx.Manager
	retries   int
	overrides map[string]string
	seqOpts   []corenumerator.Option

	sequences map[string]*sequence
	names     []string
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a service for specs. Every spec is validated up front; Sequencers
// are built on first use.
func New(history corenumerator.History, specs []corenumerator.Spec, opts ...Option) (*Service, error) {
	if history == nil {
		return nil, apperror.NewConfiguration("identifier history is required")
	}

	s := &Service{
		history:   history,
		retries:   DefaultDuplicateRetries,
		overrides: make(map[string]string),
		sequences: make(map[string]*sequence, len(specs)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("identifier type %q: %w", spec.Name, err)
		}
		if _, ok := s.sequences[spec.Name]; ok {
			return nil, apperror.NewConfiguration(fmt.Sprintf("identifier type %q is defined twice", spec.Name))
		}
		s.sequences[spec.Name] = &sequence{spec: spec}
		s.names = append(s.names, spec.Name)
	}
	for name := range s.overrides {
		if _, ok := s.sequences[name]; !ok {
			return nil, apperror.NewConfiguration(fmt.Sprintf("seed override for unknown identifier type %q", name))
		}
	}
	sort.Strings(s.names)

	return s, nil
}

// Warm builds every Sequencer so history and seed problems surface at startup.
func (s *Service) Warm(ctx context.Context) error {
	for _, name := range s.names {
		sq := s.sequences[name]
		sq.mu.Lock()
		_, err := s.sequencer(ctx, sq)
		sq.mu.Unlock()
		if err != nil {
			return fmt.Errorf("identifier type %q: %w", name, err)
		}
	}
	return nil
}

// Next implements corenumerator.Generator.
func (s *Service) Next(ctx context.Context, typeName string) (string, error) {
	ctx, span := tracer.Start(ctx, "numerator.Next",
		trace.WithAttributes(attribute.String("identifier.type", typeName)))
	defer span.End()

	identifier, attempts, err := s.next(ctx, typeName)
	span.SetAttributes(attribute.Int("identifier.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("identifier.value", identifier))
	return identifier, nil
}

func (s *Service) next(ctx context.Context, typeName string) (string, int, error) {
	sq, err := s.lookup(typeName)
	if err != nil {
		return "", 0, err
	}

	sq.mu.Lock()
	defer sq.mu.Unlock()

	seq, err := s.sequencer(ctx, sq)
	if err != nil {
		logger.Error(ctx, "failed to build sequencer", "type", typeName, "error", err)
		return "", 0, err
	}

	for attempt := 1; ; attempt++ {
		identifier, err := s.advance(ctx, sq, seq)
		if err == nil {
			logger.Debug(ctx, "identifier issued", "type", typeName, "identifier", identifier, "attempt", attempt)
			return identifier, attempt, nil
		}

		if !apperror.IsDuplicate(err) || attempt > s.retries {
			logger.Error(ctx, "failed to issue identifier", "type", typeName, "attempt", attempt, "error", err)
			return "", attempt, err
		}

		logger.Warn(ctx, "identifier already issued, reloading from history",
			"type", typeName, "attempt", attempt, "error", err)
		if err := seq.Reload(ctx); err != nil {
			return "", attempt, err
		}
	}
}

// advance records the next identifier. With a tx.Locker the type is locked
// across processes and the position is re-read from history under the lock,
// so instances sharing a store do not compute the same identifier.
func (s *Service) advance(ctx context.Context, sq *sequence, seq *corenumerator.Sequencer) (string, error) {
	if s.txm == nil {
		return seq.Advance(ctx)
	}

	var identifier string
	step := func(ctx context.Context) error {
		var err error
		identifier, err = seq.Advance(ctx)
		return err
	}

	locker, ok := s.txm.(tx.Locker)
	if !ok {
		err := s.txm.RunInTransaction(ctx, step)
		return identifier, err
	}

	err := locker.RunLocked(ctx, LockKey(sq.spec.Name), func(ctx context.Context) error {
		if !sq.fresh {
			if err := seq.Reload(ctx); err != nil {
				return err
			}
		}
		sq.fresh = false
		return step(ctx)
	})
	return identifier, err
}

// LockKey is the advisory lock key of an identifier type.
func LockKey(typeName string) string {
	return "idforge:" + typeName
}

// Current implements corenumerator.Generator.
func (s *Service) Current(ctx context.Context, typeName string) (string, error) {
	sq, err := s.lookup(typeName)
	if err != nil {
		return "", err
	}

	sq.mu.Lock()
	defer sq.mu.Unlock()

	seq, err := s.sequencer(ctx, sq)
	if err != nil {
		return "", err
	}
	return seq.Current(), nil
}

// Validate implements corenumerator.Generator.
func (s *Service) Validate(_ context.Context, typeName, identifier string) (bool, error) {
	sq, err := s.lookup(typeName)
	if err != nil {
		return false, err
	}
	return corenumerator.Validate(identifier, sq.spec), nil
}

// Types implements corenumerator.Generator.
func (s *Service) Types() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Spec returns the spec of a type.
func (s *Service) Spec(typeName string) (corenumerator.Spec, error) {
	sq, err := s.lookup(typeName)
	if err != nil {
		return corenumerator.Spec{}, err
	}
	return sq.spec, nil
}

// CheckDigit implements corenumerator.Generator.
func (s *Service) CheckDigit(partial string, cfg checkdigit.Config) (string, error) {
	return corenumerator.CalculateCheckDigit(partial, cfg)
}

func (s *Service) lookup(typeName string) (*sequence, error) {
	sq, ok := s.sequences[typeName]
	if !ok {
		return nil, apperror.NewNotFound("identifier type", typeName)
	}
	return sq, nil
}

// sequencer returns the Sequencer of sq, building it on first use.
// The caller must hold sq.mu.
func (s *Service) sequencer(ctx context.Context, sq *sequence) (*corenumerator.Sequencer, error) {
	if sq.seq != nil {
		return sq.seq, nil
	}

	opts := append([]corenumerator.Option(nil), s.seqOpts...)
	if v, ok := s.overrides[sq.spec.Name]; ok {
		opts = append(opts, corenumerator.WithSeedOverride(v))
	}

	seq, err := corenumerator.NewSequencer(ctx, sq.spec, s.history, opts...)
	if err != nil {
		return nil, err
	}
	sq.seq = seq
	sq.fresh = true
	return seq, nil
}
