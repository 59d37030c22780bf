// Package history_repo provides the PostgreSQL identifier history store.
package history_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"idforge/internal/core/apperror"
	"idforge/internal/core/id"
	"idforge/internal/core/numerator"
	"idforge/internal/infrastructure/storage/postgres"
)

// TableName is the history table.
const TableName = "sys_identifier_history"

// uniqueViolation is the PostgreSQL error code raised by the unique index on identifier.
const uniqueViolation = "23505"

// Schema creates the history table and its indexes.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS sys_identifier_history (
		id          UUID        PRIMARY KEY,
		identifier  TEXT        NOT NULL,
		type_tag    TEXT        NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_identifier_history_identifier
		ON sys_identifier_history (identifier)`,
	`CREATE INDEX IF NOT EXISTS ix_identifier_history_type_created
		ON sys_identifier_history (type_tag, created_at DESC, id DESC)`,
}

// historyRecord is one row of sys_identifier_history.
// ids are UUIDv7, so they break created_at ties in insertion order.
type historyRecord struct {
	ID         id.ID     `db:"id"`
	Identifier string    `db:"identifier"`
	TypeTag    string    `db:"type_tag"`
	CreatedAt  time.Time `db:"created_at"`
}

var columns = postgres.ExtractDBColumns[historyRecord]()

// Repo implements numerator.History on PostgreSQL.
type Repo struct {
	txm     *postgres.TxManager
	querier func(ctx context.Context) postgres.Querier
}

var _ numerator.History = (*Repo)(nil)

// NewRepo creates a repository that joins the transaction of the context when there is one.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{txm: txm, querier: txm.GetQuerier}
}

// NewRepoWithQuerier creates a repository bound to a static querier.
// Use for tests and tools that manage connections themselves.
func NewRepoWithQuerier(q postgres.Querier) *Repo {
	return &Repo{querier: func(context.Context) postgres.Querier { return q }}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *Repo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) findLastQuery(typeTag string) squirrel.SelectBuilder {
	return r.Builder().
		Select("identifier").
		From(TableName).
		Where(squirrel.Eq{"type_tag": typeTag}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)
}

func (r *Repo) insertQuery(rec historyRecord) squirrel.InsertBuilder {
	return r.Builder().
		Insert(TableName).
		SetMap(postgres.StructToMap(rec))
}

func (r *Repo) existsQuery(identifier string) squirrel.SelectBuilder {
	return r.Builder().
		Select("1").
		From(TableName).
		Where(squirrel.Eq{"identifier": identifier}).
		Prefix("SELECT EXISTS (").
		Suffix(")")
}

// FindLast implements numerator.History.
func (r *Repo) FindLast(ctx context.Context, typeTag string) (string, bool, error) {
	sql, args, err := r.findLastQuery(typeTag).ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build query: %w", err)
	}

	var identifier string
	if err := pgxscan.Get(ctx, r.querier(ctx), &identifier, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find last identifier: %w", err)
	}
	return identifier, true, nil
}

// Create implements numerator.History.
func (r *Repo) Create(ctx context.Context, identifier, typeTag string, createdAt time.Time) error {
	rec := historyRecord{
		ID:         id.New(),
		Identifier: identifier,
		TypeTag:    typeTag,
		CreatedAt:  createdAt,
	}

	sql, args, err := r.insertQuery(rec).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return translateError(err, identifier)
	}
	return nil
}

// Exists implements numerator.History.
func (r *Repo) Exists(ctx context.Context, identifier string) (bool, error) {
	sql, args, err := r.existsQuery(identifier).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check identifier exists: %w", err)
	}
	return exists, nil
}

// Migrate creates the history schema.
func (r *Repo) Migrate(ctx context.Context) error {
	if r.txm == nil {
		return fmt.Errorf("migrate requires a transaction manager")
	}
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return postgres.NewBatchExecutor(r.txm).ExecuteBatch(ctx, Schema)
	})
}

// Import bulk-loads identifiers issued elsewhere, in order, so FindLast
// returns the last one. Timestamps are spaced by a microsecond from createdAt.
func (r *Repo) Import(ctx context.Context, typeTag string, identifiers []string, createdAt time.Time) (int64, error) {
	if r.txm == nil {
		return 0, fmt.Errorf("import requires a transaction manager")
	}

	rows := make([][]any, len(identifiers))
	for i, identifier := range identifiers {
		rows[i] = postgres.StructToValues(historyRecord{
			ID:         id.New(),
			Identifier: identifier,
			TypeTag:    typeTag,
			CreatedAt:  createdAt.Add(time.Duration(i) * time.Microsecond),
		})
	}

	var n int64
	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = postgres.NewBatchInserter(r.txm).CopyFromSlice(ctx, TableName, columns, rows)
		if err != nil {
			return translateError(err, "")
		}
		return nil
	})
	return n, err
}

func translateError(err error, identifier string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.NewDuplicate(TableName, "identifier", identifier).WithCause(err)
	}
	return fmt.Errorf("insert %s: %w", TableName, err)
}
