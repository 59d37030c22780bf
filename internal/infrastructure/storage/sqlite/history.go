package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"idforge/internal/core/apperror"
	"idforge/internal/core/numerator"
)

const tableName = "sys_identifier_history"

// HistoryRepo implements numerator.History on SQLite.
type HistoryRepo struct {
	db *sql.DB
}

var _ numerator.History = (*HistoryRepo)(nil)

// NewHistoryRepo creates a repository over an opened database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question).RunWith(r.db)
}

// FindLast implements numerator.History.
// rowid breaks ties between identifiers created in the same nanosecond.
func (r *HistoryRepo) FindLast(ctx context.Context, typeTag string) (string, bool, error) {
	var identifier string
	err := r.builder().
		Select("identifier").
		From(tableName).
		Where(squirrel.Eq{"type_tag": typeTag}).
		OrderBy("created_at DESC", "rowid DESC").
		Limit(1).
		QueryRowContext(ctx).
		Scan(&identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find last identifier: %w", err)
	}
	return identifier, true, nil
}

// Create implements numerator.History.
func (r *HistoryRepo) Create(ctx context.Context, identifier, typeTag string, createdAt time.Time) error {
	_, err := r.builder().
		Insert(tableName).
		Columns("identifier", "type_tag", "created_at").
		Values(identifier, typeTag, createdAt.UnixNano()).
		ExecContext(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return apperror.NewDuplicate(tableName, "identifier", identifier).WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", tableName, err)
	}
	return nil
}

// Exists implements numerator.History.
func (r *HistoryRepo) Exists(ctx context.Context, identifier string) (bool, error) {
	var n int
	err := r.builder().
		Select("COUNT(1)").
		From(tableName).
		Where(squirrel.Eq{"identifier": identifier}).
		QueryRowContext(ctx).
		Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check identifier exists: %w", err)
	}
	return n > 0, nil
}

// Import records identifiers issued elsewhere, in order, inside one transaction.
func (r *HistoryRepo) Import(ctx context.Context, typeTag string, identifiers []string, createdAt time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int64
	for i, identifier := range identifiers {
		_, err := squirrel.Insert(tableName).
			Columns("identifier", "type_tag", "created_at").
			Values(identifier, typeTag, createdAt.Add(time.Duration(i)).UnixNano()).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				return 0, apperror.NewDuplicate(tableName, "identifier", identifier).WithCause(err)
			}
			return 0, fmt.Errorf("import %s: %w", identifier, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return n, nil
}

// Ping checks that the database is reachable.
func (r *HistoryRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
