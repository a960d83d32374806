package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserMock(t *testing.T) (sqlmock.Sqlmock, *UserRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return mock, NewUserRepo(db), func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func TestUserCreateMapsDuplicateKeys(t *testing.T) {
	cases := []struct {
		name     string
		mysqlMsg string
		want     error
	}{
		{"cpf", "Error 1062 (23000): Duplicate entry '12345678901' for key 'uk_cpf'", ErrCPFExists},
		{"email", "Error 1062 (23000): Duplicate entry 'ana@example.com' for key 'uk_email'", ErrEmailExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock, repo, done := newUserMock(t)
			defer done()

			mock.ExpectExec("INSERT INTO usuarios").
				WillReturnError(errors.New(tc.mysqlMsg))

			_, err := repo.Create(context.Background(), "Ana", "ana@example.com", "12345678901", "segredo", "comum", 4)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUserCreateNormalizesEmail(t *testing.T) {
	mock, repo, done := newUserMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO usuarios").
		WithArgs("Ana", "ana@example.com", "12345678901", sqlmock.AnyArg(), "comum").
		WillReturnResult(sqlmock.NewResult(9, 1))

	id, err := repo.Create(context.Background(), "Ana", "  ANA@Example.COM ", "12345678901", "segredo", "comum", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)
}

func TestUserGetByIDNotFound(t *testing.T) {
	mock, repo, done := newUserMock(t)
	defer done()

	mock.ExpectQuery("SELECT id_usuario,nome,email").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUsuarioNotFound)
}

func TestUserDeleteKeepsNoGhostRows(t *testing.T) {
	mock, repo, done := newUserMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM usuarios WHERE id_usuario").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUsuarioNotFound)
}
