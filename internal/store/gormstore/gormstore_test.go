package gormstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	unique := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "idx_users_email"}

	assert.True(t, isDuplicateKey(unique))
	assert.True(t, isDuplicateKey(fmt.Errorf("create user: %w", unique)))

	assert.False(t, isDuplicateKey(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
	assert.False(t, isDuplicateKey(nil))
}
