package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idforge/internal/core/apperror"
	"idforge/internal/core/numerator"
	"idforge/internal/core/numerator/checkdigit"
)

func openMemory(t *testing.T) *HistoryRepo {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHistoryRepo(db)
}

func TestHistoryRepo_CreateFindLast(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t)

	_, found, err := repo.FindLast(ctx, "sample")
	require.NoError(t, err)
	assert.False(t, found)

	now := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, "AAA00015", "sample", now))
	require.NoError(t, repo.Create(ctx, "AAA00023", "sample", now))
	require.NoError(t, repo.Create(ctx, "R001", "result", now.Add(time.Hour)))

	last, found, err := repo.FindLast(ctx, "sample")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "AAA00023", last)

	exists, err := repo.Exists(ctx, "AAA00015")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "AAA00031")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHistoryRepo_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t)

	require.NoError(t, repo.Create(ctx, "AAA00015", "sample", time.Now()))
	err := repo.Create(ctx, "AAA00015", "other", time.Now())
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestHistoryRepo_Import(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t)

	n, err := repo.Import(ctx, "batch", []string{"202610190001", "202610190002", "202610190003"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	last, _, err := repo.FindLast(ctx, "batch")
	require.NoError(t, err)
	assert.Equal(t, "202610190003", last)

	_, err = repo.Import(ctx, "batch", []string{"202610190004", "202610190001"}, time.Now())
	assert.True(t, apperror.IsDuplicate(err))

	// the failed import is rolled back as a whole
	exists, err := repo.Exists(ctx, "202610190004")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHistoryRepo_SequencerResumes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "history", "ids.db")

	spec := numerator.Spec{
		Name:       "sample",
		Body:       `[A-Z]{3}[0-9]{4}`,
		CheckDigit: checkdigit.Config{Kind: checkdigit.Mod10Ordinal},
	}

	db, err := Open(path)
	require.NoError(t, err)
	seq, err := numerator.NewSequencer(ctx, spec, NewHistoryRepo(db))
	require.NoError(t, err)
	_, err = seq.Advance(ctx)
	require.NoError(t, err)
	_, err = seq.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	seq, err = numerator.NewSequencer(ctx, spec, NewHistoryRepo(db))
	require.NoError(t, err)
	assert.Equal(t, "AAA00023", seq.Current())

	next, err := seq.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AAA00031", next)
}
