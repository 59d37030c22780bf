package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"idforge/internal/core/apperror"
	"idforge/internal/core/numerator/increment"
	"idforge/internal/core/numerator/random"
)

// Clock returns the current time. It drives date prefixes and history timestamps.
type Clock func() time.Time

type options struct {
	seedOverride string
	clock        Clock
	source       random.Source
}

// Option configures a Sequencer.
type Option func(*options)

// WithSeedOverride starts the sequence at value instead of the last recorded
// identifier. value may carry its check digit, in which case it is verified.
func WithSeedOverride(value string) Option {
	return func(o *options) { o.seedOverride = value }
}

// WithClock replaces time.Now.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithRandomSource replaces the nanoid draw used by the Random strategy.
func WithRandomSource(source random.Source) Option {
	return func(o *options) { o.source = source }
}

// Sequencer holds the position of one identifier type and advances it.
//
// A Sequencer is safe for concurrent use inside one process. Issuers in other
// processes are only kept apart by the uniqueness check of History.Create.
type Sequencer struct {
	mu       sync.Mutex
	f        *format
	history  History
	clock    Clock
	resolver *random.Resolver

	prefix  string
	body    string
	current string
}

// NewSequencer builds a Sequencer for spec. The starting position is the seed
// override when given, else the last identifier recorded for spec.Name, else the seed.
// A recorded identifier whose date prefix differs from today's restarts at the seed.
// Building a sequencer never issues an identifier: Current reports the starting
// position and the first Advance returns the one after it.
func NewSequencer(ctx context.Context, spec Spec, history History, opts ...Option) (*Sequencer, error) {
	if history == nil {
		return nil, apperror.NewConfiguration("identifier history is required")
	}

	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := spec.compile(o.source)
	if err != nil {
		return nil, err
	}

	s := &Sequencer{f: f, history: history, clock: o.clock}
	if f.gen != nil {
		s.resolver = random.NewResolver(f.gen)
	}

	prefix := f.prefix(s.clock())
	if o.seedOverride != "" {
		p, body, _, err := f.parse(o.seedOverride)
		if err != nil {
			return nil, err
		}
		if p != prefix {
			return nil, apperror.NewFormat(o.seedOverride, f.expr).WithDetail("prefix", prefix)
		}
		if err := s.set(p, body); err != nil {
			return nil, err
		}
		return s, nil
	}

	found, err := s.load(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := s.set(prefix, f.seed); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Spec returns the spec the sequencer was built from.
func (s *Sequencer) Spec() Spec {
	return s.f.spec
}

// Current returns the identifier at the current position.
// Random sequencers without history return "" until the first Advance.
func (s *Sequencer) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reload moves the position to the last identifier recorded in history.
// The position is kept when history holds nothing for the type.
func (s *Sequencer) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.load(ctx, s.f.prefix(s.clock()))
	return err
}

// Advance computes the next identifier, records it in history and moves the
// position to it. On any error the position is left unchanged.
func (s *Sequencer) Advance(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	prefix := s.f.prefix(now)

	var (
		id, body string
		err      error
	)
	if s.resolver != nil {
		id, body, err = s.nextRandom(ctx, prefix)
	} else {
		id, body, err = s.nextSequential(prefix)
	}
	if err != nil {
		return "", err
	}

	if !s.f.re.MatchString(id) {
		return "", apperror.NewFormat(id, s.f.expr)
	}
	if err := s.history.Create(ctx, id, s.f.spec.Name, now); err != nil {
		return "", fmt.Errorf("record identifier %s: %w", id, err)
	}

	s.prefix, s.body, s.current = prefix, body, id
	return id, nil
}

// Validate reports whether identifier is well-formed for this sequencer's spec.
func (s *Sequencer) Validate(identifier string) bool {
	return s.f.valid(identifier)
}

func (s *Sequencer) nextSequential(prefix string) (string, string, error) {
	base := s.body
	if prefix != s.prefix {
		base = s.f.seed
	}

	body, err := increment.Body(s.f.layout, base, s.f.spec.Overflow)
	if err != nil {
		return "", "", err
	}
	id, err := s.f.render(prefix, body)
	if err != nil {
		return "", "", err
	}
	return id, body, nil
}

func (s *Sequencer) nextRandom(ctx context.Context, prefix string) (string, string, error) {
	var body string
	render := func(seg string) (string, error) {
		body = seg
		return s.f.render(prefix, seg)
	}

	id, err := s.resolver.Resolve(ctx, render, s.history.Exists)
	if err != nil {
		return "", "", err
	}
	return id, body, nil
}

// load reads the last recorded identifier and moves the position to it.
func (s *Sequencer) load(ctx context.Context, prefix string) (bool, error) {
	last, found, err := s.history.FindLast(ctx, s.f.spec.Name)
	if err != nil {
		return false, fmt.Errorf("find last %s identifier: %w", s.f.spec.Name, err)
	}
	if !found {
		return false, nil
	}

	p, body, _, err := s.f.parse(last)
	if err != nil {
		return false, err
	}
	if p != prefix {
		// new period
		return true, s.set(prefix, s.f.seed)
	}
	return true, s.set(p, body)
}

func (s *Sequencer) set(prefix, body string) error {
	current := ""
	if body != "" {
		var err error
		if current, err = s.f.render(prefix, body); err != nil {
			return err
		}
	}
	s.prefix, s.body, s.current = prefix, body, current
	return nil
}
