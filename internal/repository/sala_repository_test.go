package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSalaMock(t *testing.T) (sqlmock.Sqlmock, *SalaRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return mock, NewSalaRepo(db), func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func salaRow(id int, numero, bloco string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id_sala", "numero", "descricao", "capacidade", "bloco", "created_at", "updated_at"}).
		AddRow(id, numero, "Sala de aula", 30, bloco, now, now)
}

func TestSalaCreateDuplicateNumero(t *testing.T) {
	mock, repo, done := newSalaMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO salas").
		WithArgs("101", "Sala de aula", uint32(30), "A").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '101' for key 'uk_numero'"))

	_, err := repo.Create(context.Background(), "101", "Sala de aula", 30, "A")
	assert.ErrorIs(t, err, ErrSalaExists)
}

func TestSalaCreateReadsBackRow(t *testing.T) {
	mock, repo, done := newSalaMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO salas").
		WithArgs("101", "Sala de aula", uint32(30), "A").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT id_sala,numero,descricao,capacidade,bloco").
		WithArgs(uint64(5)).
		WillReturnRows(salaRow(5, "101", "A"))

	s, err := repo.Create(context.Background(), "101", "Sala de aula", 30, "A")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), s.ID)
	assert.Equal(t, "101", s.Numero)
	assert.Equal(t, "A", s.Bloco)
}

func TestSalaDeleteByNumeroBlockedByActiveReservations(t *testing.T) {
	mock, repo, done := newSalaMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id_sala FROM salas WHERE numero").
		WithArgs("101").
		WillReturnRows(sqlmock.NewRows([]string{"id_sala"}).AddRow(5))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(uint64(5), "2024-03-04").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.DeleteByNumero(context.Background(), "101", "2024-03-04")
	assert.ErrorIs(t, err, ErrSalaEmUso)
}

func TestSalaDeleteByNumeroRemovesRoomAndHistory(t *testing.T) {
	mock, repo, done := newSalaMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id_sala FROM salas WHERE numero").
		WithArgs("101").
		WillReturnRows(sqlmock.NewRows([]string{"id_sala"}).AddRow(5))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(uint64(5), "2024-03-04").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM reservas WHERE fk_id_sala").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM salas WHERE id_sala").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteByNumero(context.Background(), "101", "2024-03-04")
	assert.NoError(t, err)
}

func TestSalaDeleteByNumeroUnknownRoom(t *testing.T) {
	mock, repo, done := newSalaMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id_sala FROM salas WHERE numero").
		WithArgs("999").
		WillReturnRows(sqlmock.NewRows([]string{"id_sala"}))
	mock.ExpectRollback()

	err := repo.DeleteByNumero(context.Background(), "999", "2024-03-04")
	assert.ErrorIs(t, err, ErrSalaNotFound)
}

func TestSalaListFiltersByBloco(t *testing.T) {
	mock, repo, done := newSalaMock(t)
	defer done()

	mock.ExpectQuery("SELECT id_sala,numero,descricao,capacidade,bloco").
		WithArgs("B").
		WillReturnRows(salaRow(2, "201", "B"))

	salas, err := repo.List(context.Background(), "B")
	require.NoError(t, err)
	require.Len(t, salas, 1)
	assert.Equal(t, "201", salas[0].Numero)
}
