package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reserva-salas/backend/internal/config"
	"github.com/reserva-salas/backend/internal/repository"
	"github.com/reserva-salas/backend/internal/utils"
)

func newAuthFixture(t *testing.T) (sqlmock.Sqlmock, *AuthHandler) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
	}
	return mock, NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
}

func TestLoginUnknownEmail(t *testing.T) {
	mock, h := newAuthFixture(t)

	mock.ExpectQuery("SELECT id_usuario,nome,email").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario"}))

	c, rec := newCtx(http.MethodPost, "/user/login", `{"email":"ana@example.com","senha":"segredo"}`, 0, "")
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	mock, h := newAuthFixture(t)

	hash, err := utils.HashPassword("outra-senha", 4)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("SELECT id_usuario,nome,email").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario", "nome", "email", "cpf", "senha", "tipo", "created_at", "updated_at"}).
			AddRow(7, "Ana", "ana@example.com", "12345678901", hash, "comum", now, now))

	c, rec := newCtx(http.MethodPost, "/user/login", `{"email":"ana@example.com","senha":"segredo"}`, 0, "")
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginReturnsTokensAndUsuario(t *testing.T) {
	mock, h := newAuthFixture(t)

	hash, err := utils.HashPassword("segredo", 4)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("SELECT id_usuario,nome,email").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario", "nome", "email", "cpf", "senha", "tipo", "created_at", "updated_at"}).
			AddRow(7, "Ana", "ana@example.com", "12345678901", hash, "admin", now, now))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newCtx(http.MethodPost, "/user/login", `{"email":"ana@example.com","senha":"segredo"}`, 0, "")
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token   string `json:"token"`
		Refresh string `json:"refresh"`
		Usuario struct {
			ID   uint64 `json:"id_usuario"`
			Nome string `json:"nome"`
			Tipo string `json:"tipo"`
		} `json:"usuario"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.Refresh)
	assert.Equal(t, uint64(7), resp.Usuario.ID)
	assert.Equal(t, "Ana", resp.Usuario.Nome)
	assert.Equal(t, "admin", resp.Usuario.Tipo)
}
