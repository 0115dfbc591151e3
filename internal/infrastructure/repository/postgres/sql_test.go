package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(sql.ErrNoRows))
	assert.True(t, isNotFound(fmt.Errorf("get row: %w", sql.ErrNoRows)))
	assert.False(t, isNotFound(errors.New("boom")))
	assert.False(t, isNotFound(nil))
}

func TestInt64PtrNullRoundTrip(t *testing.T) {
	assert.False(t, int64PtrToNull(nil).Valid)
	assert.Nil(t, nullToInt64Ptr(sql.NullInt64{}))

	v := int64(42)
	null := int64PtrToNull(&v)
	assert.True(t, null.Valid)

	back := nullToInt64Ptr(null)
	if assert.NotNil(t, back) {
		assert.Equal(t, int64(42), *back)
	}
}

func TestRowErrorMessage(t *testing.T) {
	pqErr := &pq.Error{
		Code:       "23505",
		Constraint: "players_league_id_external_id_key",
		Message:    "duplicate key value violates unique constraint",
	}
	msg := rowErrorMessage(pqErr)
	assert.Contains(t, msg, "unique_violation")
	assert.Contains(t, msg, "players_league_id_external_id_key")

	assert.Equal(t, "plain failure", rowErrorMessage(errors.New("plain failure")))
}

func TestIsLeagueDependentTable(t *testing.T) {
	assert.True(t, isLeagueDependentTable("players"))
	assert.True(t, isLeagueDependentTable("match_scores"))
	assert.False(t, isLeagueDependentTable("leagues"))
	assert.False(t, isLeagueDependentTable("players; DROP TABLE players"))
}
