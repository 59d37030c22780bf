package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNew_Ordered(t *testing.T) {
	prev := New()
	assert.Equal(t, uuid.Version(7), prev.Version())

	for i := 0; i < 100; i++ {
		next := New()
		assert.True(t, Before(prev, next), "%s should sort before %s", prev, next)
		prev = next
	}
}
