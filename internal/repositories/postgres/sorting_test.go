package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortClause_KnownColumn(t *testing.T) {
	assert.Equal(t, "title ASC", sortClause("title", "asc", "created_at"))
	assert.Equal(t, "difficulty DESC", sortClause("difficulty", "desc", "created_at"))
}

func TestSortClause_DefaultsWhenEmpty(t *testing.T) {
	assert.Equal(t, "created_at DESC", sortClause("", "", "created_at"))
}

func TestSortClause_RejectsUnknownColumn(t *testing.T) {
	// Arbitrary caller input must never become part of the ORDER BY.
	payloads := []string{
		"(SELECT CASE WHEN (SELECT 1)=1 THEN title ELSE id END)",
		"created_at; DROP TABLE courses",
		"nonexistent_column",
	}
	for _, p := range payloads {
		assert.Equal(t, "created_at DESC", sortClause(p, "desc", "created_at"))
	}
}

func TestSortClause_RejectsUnknownOrder(t *testing.T) {
	assert.Equal(t, "title DESC", sortClause("title", "asc; DELETE FROM users", "created_at"))
}
