// Package id generates the row ids of history records.
package id

import (
	"bytes"

	"github.com/google/uuid"
)

// ID identifies one history record. It is not the issued identifier.
type ID = uuid.UUID

// New returns a UUIDv7. Ids from one process increase monotonically, so
// they break ties between records written in the same timestamp.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Before reports whether a was generated before b. It matches the byte order
// postgres uses for uuid columns.
func Before(a, b ID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
