package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idforge/internal/core/apperror"
	corenumerator "idforge/internal/core/numerator"
	"idforge/internal/core/numerator/checkdigit"
	"idforge/internal/core/numerator/increment"
	"idforge/internal/infrastructure/storage/memory"
)

func sampleSpec() corenumerator.Spec {
	return corenumerator.Spec{
		Name:       "sample",
		Body:       `[A-Z]{3}[0-9]{4}`,
		CheckDigit: checkdigit.Config{Kind: checkdigit.Mod10Ordinal},
		Seed:       "AAA0000",
	}
}

func batchSpec() corenumerator.Spec {
	return corenumerator.Spec{
		Name:         "batch",
		PrefixLayout: "20060102",
		Body:         `[0-9]{4}`,
		Overflow:     increment.Fail,
	}
}

// countingTx records how many transactions were opened.
type countingTx struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return fn(ctx)
}

func TestService_Next(t *testing.T) {
	ctx := context.Background()
	store := memory.NewHistoryStore()
	clock := func() time.Time { return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC) }

	svc, err := New(store, []corenumerator.Spec{sampleSpec(), batchSpec()},
		WithSequencerOptions(corenumerator.WithClock(clock)))
	require.NoError(t, err)
	require.NoError(t, svc.Warm(ctx))

	assert.Equal(t, []string{"batch", "sample"}, svc.Types())

	for _, want := range []string{"AAA00015", "AAA00023", "AAA00031"} {
		got, err := svc.Next(ctx, "sample")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := svc.Next(ctx, "batch")
	require.NoError(t, err)
	assert.Equal(t, "202610190001", got)

	current, err := svc.Current(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, "AAA00031", current)
	assert.Equal(t, 4, store.Len())
}

func TestService_UnknownType(t *testing.T) {
	svc, err := New(memory.NewHistoryStore(), []corenumerator.Spec{sampleSpec()})
	require.NoError(t, err)

	_, err = svc.Next(context.Background(), "nope")
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Current(context.Background(), "nope")
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Validate(context.Background(), "nope", "AAA00015")
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_InvalidConfiguration(t *testing.T) {
	bad := sampleSpec()
	bad.Seed = "12"
	_, err := New(memory.NewHistoryStore(), []corenumerator.Spec{bad})
	assert.True(t, apperror.IsFormatError(err))

	_, err = New(memory.NewHistoryStore(), []corenumerator.Spec{sampleSpec(), sampleSpec()})
	assert.True(t, apperror.IsConfiguration(err))

	_, err = New(memory.NewHistoryStore(), []corenumerator.Spec{sampleSpec()}, WithSeedOverride("other", "AAA0001"))
	assert.True(t, apperror.IsConfiguration(err))

	_, err = New(nil, nil)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestService_SeedOverride(t *testing.T) {
	svc, err := New(memory.NewHistoryStore(), []corenumerator.Spec{sampleSpec()},
		WithSeedOverride("sample", "AAA99991"))
	require.NoError(t, err)

	got, err := svc.Next(context.Background(), "sample")
	require.NoError(t, err)
	assert.Equal(t, "AAB00013", got)
}

func TestService_RetriesAfterDuplicate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewHistoryStore()

	a, err := New(store, []corenumerator.Spec{sampleSpec()})
	require.NoError(t, err)
	b, err := New(store, []corenumerator.Spec{sampleSpec()})
	require.NoError(t, err)

	got, err := a.Next(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, "AAA00015", got)

	// b starts from the shared history
	got, err = b.Next(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, "AAA00023", got)

	// a computes AAA00023 again, hits the duplicate and reloads
	got, err = a.Next(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, "AAA00031", got)
}

func TestService_DuplicateRetriesExhausted(t *testing.T) {
	creates := 0
	history := &corenumerator.MockHistory{
		CreateFunc: func(_ context.Context, identifier, _ string, _ time.Time) error {
			creates++
			return apperror.NewDuplicate("identifier", "identifier", identifier)
		},
	}

	svc, err := New(history, []corenumerator.Spec{sampleSpec()}, WithDuplicateRetries(2))
	require.NoError(t, err)

	_, err = svc.Next(context.Background(), "sample")
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
	assert.Equal(t, 3, creates)
}

func TestService_SequenceExhaustedIsNotRetried(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC) }
	svc, err := New(memory.NewHistoryStore(), []corenumerator.Spec{batchSpec()},
		WithSeedOverride("batch", "202610199999"),
		WithSequencerOptions(corenumerator.WithClock(clock)))
	require.NoError(t, err)

	_, err = svc.Next(context.Background(), "batch")
	assert.True(t, apperror.IsSequenceExhausted(err))
}

func TestService_RunsInTransaction(t *testing.T) {
	txm := &countingTx{}
	svc, err := New(memory.NewHistoryStore(), []corenumerator.Spec{sampleSpec()}, WithTxManager(txm))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Next(context.Background(), "sample")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, txm.calls)
}

func TestService_ConcurrentNext(t *testing.T) {
	ctx := context.Background()
	svc, err := New(memory.NewHistoryStore(), []corenumerator.Spec{sampleSpec()})
	require.NoError(t, err)

	const n = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := svc.Next(ctx, "sample")
			assert.NoError(t, err)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	current, err := svc.Current(ctx, "sample")
	require.NoError(t, err)
	assert.True(t, seen[current])
}

func TestService_ValidateAndCheckDigit(t *testing.T) {
	svc, err := New(memory.NewHistoryStore(), []corenumerator.Spec{sampleSpec()})
	require.NoError(t, err)

	ok, err := svc.Validate(context.Background(), "sample", "AAA00015")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Validate(context.Background(), "sample", "AAA00016")
	require.NoError(t, err)
	assert.False(t, ok)

	digit, err := svc.CheckDigit("7992739871", checkdigit.Config{Kind: checkdigit.Mod10})
	require.NoError(t, err)
	assert.Equal(t, "3", digit)

	spec, err := svc.Spec("sample")
	require.NoError(t, err)
	assert.Equal(t, "AAA0000", spec.Seed)
}

// lockingTx serializes RunLocked calls with one mutex per key, like an advisory lock.
type lockingTx struct {
	countingTx
	locks sync.Map
	keys  []string
}

func (l *lockingTx) RunLocked(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	v, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	l.countingTx.mu.Lock()
	l.keys = append(l.keys, key)
	l.countingTx.mu.Unlock()
	return l.RunInTransaction(ctx, fn)
}

// countingHistory counts Create calls on top of a memory store.
type countingHistory struct {
	*memory.HistoryStore
	mu      sync.Mutex
	creates int
}

func (h *countingHistory) Create(ctx context.Context, identifier, typeTag string, createdAt time.Time) error {
	h.mu.Lock()
	h.creates++
	h.mu.Unlock()
	return h.HistoryStore.Create(ctx, identifier, typeTag, createdAt)
}

func TestService_LockedReloadAvoidsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := &countingHistory{HistoryStore: memory.NewHistoryStore()}
	txm := &lockingTx{}

	a, err := New(store, []corenumerator.Spec{sampleSpec()}, WithTxManager(txm))
	require.NoError(t, err)
	b, err := New(store, []corenumerator.Spec{sampleSpec()}, WithTxManager(txm))
	require.NoError(t, err)

	var got []string
	for _, svc := range []*Service{a, b, a, a, b} {
		id, err := svc.Next(ctx, "sample")
		require.NoError(t, err)
		got = append(got, id)
	}

	assert.Equal(t, []string{"AAA00015", "AAA00023", "AAA00031", "AAA00049", "AAA00057"}, got)
	assert.Equal(t, 5, store.creates, "no identifier should be computed twice")
	assert.Equal(t, 5, txm.calls)
	assert.Equal(t, LockKey("sample"), txm.keys[0])
}

func TestService_LockedKeepsSeedOverride(t *testing.T) {
	store := memory.NewHistoryStore()
	require.NoError(t, store.Create(context.Background(), "AAA00015", "sample", time.Now()))

	svc, err := New(store, []corenumerator.Spec{sampleSpec()},
		WithTxManager(&lockingTx{}), WithSeedOverride("sample", "AAA99991"))
	require.NoError(t, err)

	got, err := svc.Next(context.Background(), "sample")
	require.NoError(t, err)
	assert.Equal(t, "AAB00013", got)
}
