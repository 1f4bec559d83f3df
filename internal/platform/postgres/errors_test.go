package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pvasek/taskhub/internal/store"
	"github.com/stretchr/testify/assert"
)

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: "some_constraint"}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	opaque := errors.New("connection reset by peer")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil passes through", in: nil, want: nil},
		{name: "no rows", in: sql.ErrNoRows, want: store.ErrNotFound},
		{name: "wrapped no rows", in: fmt.Errorf("query task: %w", sql.ErrNoRows), want: store.ErrNotFound},
		{name: "unique violation", in: pgError(uniqueViolationCode), want: store.ErrDuplicate},
		{name: "foreign key violation", in: pgError(foreignKeyViolationCode), want: store.ErrInvalidEntity},
		{name: "check violation", in: pgError(checkViolationCode), want: store.ErrInvalidEntity},
		{name: "not null violation", in: pgError(notNullViolationCode), want: store.ErrInvalidEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := MapError(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}

	t.Run("unknown errors pass through unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, opaque, MapError(opaque))
	})
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert: %w", pgError(uniqueViolationCode))
	fk := fmt.Errorf("insert: %w", pgError(foreignKeyViolationCode))

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("plain")))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(unique))
}
