package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at"}).
			AddRow(7, "Lan Nguyen", "lan@example.com", "0900000000", time.Now())

		mock.ExpectQuery(`SELECT id, name, email, phone, created_at\s+FROM users\s+WHERE id = \$1`).
			WithArgs(uint(7)).
			WillReturnRows(rows)

		u, err := repo.FindByID(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "lan@example.com", u.Email)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, email, phone, created_at\s+FROM users`).
			WithArgs(uint(404)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at"}))

		u, err := repo.FindByID(ctx, 404)
		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, email, phone, created_at\s+FROM users`).
			WithArgs(uint(7)).
			WillReturnError(errors.New("db error"))

		_, err := repo.FindByID(ctx, 7)
		assert.Error(t, err)
	})
}
