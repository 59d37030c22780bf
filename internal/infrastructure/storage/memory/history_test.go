package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idforge/internal/core/apperror"
)

func TestHistoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore()
	now := time.Now()

	_, found, err := s.FindLast(ctx, "sample")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Create(ctx, "AAA00015", "sample", now))
	require.NoError(t, s.Create(ctx, "AAA00023", "sample", now))
	require.NoError(t, s.Create(ctx, "R001", "result", now.Add(time.Minute)))
	// an older record does not become the last one
	require.NoError(t, s.Create(ctx, "AAA00007", "sample", now.Add(-time.Minute)))

	last, found, err := s.FindLast(ctx, "sample")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "AAA00023", last)

	err = s.Create(ctx, "R001", "sample", now)
	assert.True(t, apperror.IsDuplicate(err))

	exists, err := s.Exists(ctx, "R001")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 4, s.Len())
}

func TestHistoryStore_FindLastSameTimestamp(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore()
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	for _, identifier := range []string{"AAA00015", "AAA00023", "AAA00031"} {
		require.NoError(t, s.Create(ctx, identifier, "sample", now))
	}

	last, found, err := s.FindLast(ctx, "sample")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "AAA00031", last)
}

func TestHistoryStore_Import(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore()

	n, err := s.Import(ctx, "batch", []string{"a", "b", "a"}, time.Now())
	assert.True(t, apperror.IsDuplicate(err))
	assert.Equal(t, int64(2), n)

	last, _, err := s.FindLast(ctx, "batch")
	require.NoError(t, err)
	assert.Equal(t, "b", last)
}

func TestHistoryStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		duplicates int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Create(ctx, "SAME", "sample", time.Now()); apperror.IsDuplicate(err) {
				mu.Lock()
				duplicates++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 19, duplicates)
	assert.Equal(t, 1, s.Len())
}
