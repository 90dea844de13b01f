package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/contacts/pkg/auth"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u := auth.User{ID: uuid.New(), Email: "Alice@Example.com", PasswordHash: "h", CreatedAt: time.Now().UTC()}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, "alice@example.com", "h", u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), u))
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u := auth.User{ID: uuid.New(), Email: "a@b.c", PasswordHash: "h", CreatedAt: time.Now().UTC()}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, "a@b.c", "h", u.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	assert.ErrorIs(t, repo.Create(context.Background(), u), auth.ErrUserAlreadyExists)
}

func TestUserRepository_CreateDBError(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u := auth.User{ID: uuid.New(), Email: "a@b.c", PasswordHash: "h", CreatedAt: time.Now().UTC()}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, "a@b.c", "h", u.CreatedAt).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrUserAlreadyExists)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("bob@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(id, "bob@example.com", "digest", created))

	u, err := repo.GetByEmail(context.Background(), " BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "digest", u.PasswordHash)
	assert.Equal(t, created, u.CreatedAt)
}

func TestUserRepository_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, auth.ErrNotFound)
	_, err = repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}
