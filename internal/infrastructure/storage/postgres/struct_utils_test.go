package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"idforge/internal/core/id"
)

type AuditFields struct {
	CreatedAt time.Time `db:"created_at"`
	Note      string    `db:"-"`
}

type mockRecord struct {
	ID         id.ID  `db:"id"`
	Identifier string `db:"identifier"`
	AuditFields
	Hidden string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockRecord]()
	assert.Equal(t, []string{"id", "identifier", "created_at"}, cols)

	assert.Empty(t, ExtractDBColumns[int]())
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	rec := mockRecord{
		ID:          id.New(),
		Identifier:  "AAA00015",
		AuditFields: AuditFields{CreatedAt: now, Note: "skip"},
		Hidden:      "skip",
	}

	m := StructToMap(&rec)
	assert.Len(t, m, 3)
	assert.Equal(t, rec.ID, m["id"])
	assert.Equal(t, "AAA00015", m["identifier"])
	assert.Equal(t, now, m["created_at"])

	assert.Equal(t, []any{rec.ID, "AAA00015", now}, StructToValues(rec))
	assert.Nil(t, StructToMap("not a struct"))
}
