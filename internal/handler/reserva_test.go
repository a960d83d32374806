package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reserva-salas/backend/internal/repository"
)

type reservaFixture struct {
	mock    sqlmock.Sqlmock
	db      *sql.DB
	handler *ReservaHandler
}

func newReservaFixture(t *testing.T) *reservaFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return &reservaFixture{
		mock: mock,
		db:   db,
		handler: NewReservaHandler(db,
			repository.NewReservaRepo(db),
			repository.NewSalaRepo(db),
			repository.NewPeriodoRepo(db),
			repository.NewUserRepo(db)),
	}
}

// newCtx builds an echo context carrying the claims the JWT middleware
// would have set.
func newCtx(method, target, body string, userID uint64, tipo string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("tipo", tipo)
	return c, rec
}

func (f *reservaFixture) expectUsuario(id uint64) {
	now := time.Now()
	f.mock.ExpectQuery("SELECT id_usuario,nome,email").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario", "nome", "email", "cpf", "senha", "tipo", "created_at", "updated_at"}).
			AddRow(id, "Ana", "ana@example.com", "12345678901", "$2a$04$hash", "comum", now, now))
}

func (f *reservaFixture) expectSala(id uint64) {
	now := time.Now()
	f.mock.ExpectQuery("SELECT id_sala,numero,descricao,capacidade,bloco").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id_sala", "numero", "descricao", "capacidade", "bloco", "created_at", "updated_at"}).
			AddRow(id, "101", "Sala de aula", 30, "A", now, now))
}

func TestCreateReservaExpandsRecurrence(t *testing.T) {
	f := newReservaFixture(t)

	// Seg and Qua between 2024-03-04 and 2024-03-15 are exactly four
	// dates; one period means four rows inserted in one transaction.
	f.expectUsuario(7)
	f.expectSala(1)
	f.mock.ExpectQuery("SELECT id_periodo FROM periodos WHERE id_periodo IN").
		WillReturnRows(sqlmock.NewRows([]string{"id_periodo"}).AddRow(3))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery("SELECT fk_id_periodo, DATE_FORMAT").
		WillReturnRows(sqlmock.NewRows([]string{"fk_id_periodo", "data"}))
	for i, data := range []string{"2024-03-04", "2024-03-06", "2024-03-11", "2024-03-13"} {
		f.mock.ExpectExec("INSERT INTO reservas").
			WithArgs(uint64(7), uint64(1), uint64(3), data, "Seg,Qua", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	f.mock.ExpectCommit()

	body := `{"fk_id_user":7,"fk_id_sala":1,"fk_id_periodos":[3],"dias":["Seg","Qua"],"data_inicio":"2024-03-04","data_fim":"2024-03-15"}`
	c, rec := newCtx(http.MethodPost, "/reserva", body, 7, "comum")

	require.NoError(t, f.handler.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Serie    string `json:"serie"`
		Reservas []struct {
			ID   uint64 `json:"id_reserva"`
			Data string `json:"data"`
		} `json:"reservas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Serie)
	require.Len(t, resp.Reservas, 4)
	assert.Equal(t, "2024-03-04", resp.Reservas[0].Data)
	assert.Equal(t, "2024-03-13", resp.Reservas[3].Data)
}

func TestCreateReservaConflictRejectsWholeRequest(t *testing.T) {
	f := newReservaFixture(t)

	f.expectUsuario(7)
	f.expectSala(1)
	f.mock.ExpectQuery("SELECT id_periodo FROM periodos WHERE id_periodo IN").
		WillReturnRows(sqlmock.NewRows([]string{"id_periodo"}).AddRow(3))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery("SELECT fk_id_periodo, DATE_FORMAT").
		WillReturnRows(sqlmock.NewRows([]string{"fk_id_periodo", "data"}).
			AddRow(3, "2024-03-06"))
	f.mock.ExpectRollback()

	body := `{"fk_id_user":7,"fk_id_sala":1,"fk_id_periodos":[3],"dias":["Seg","Qua"],"data_inicio":"2024-03-04","data_fim":"2024-03-15"}`
	c, rec := newCtx(http.MethodPost, "/reserva", body, 7, "comum")

	require.NoError(t, f.handler.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Conflitos []struct {
			Data string `json:"data"`
		} `json:"conflitos"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Conflitos, 1)
	assert.Equal(t, "2024-03-06", resp.Conflitos[0].Data)
}

func TestCreateReservaUnknownSala(t *testing.T) {
	f := newReservaFixture(t)

	f.expectUsuario(7)
	f.mock.ExpectQuery("SELECT id_sala,numero,descricao,capacidade,bloco").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id_sala"}))

	body := `{"fk_id_user":7,"fk_id_sala":42,"fk_id_periodos":[3],"dias":["Seg"],"data_inicio":"2024-03-04","data_fim":"2024-03-04"}`
	c, rec := newCtx(http.MethodPost, "/reserva", body, 7, "comum")

	require.NoError(t, f.handler.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReservaForOtherUserNeedsAdmin(t *testing.T) {
	f := newReservaFixture(t)

	body := `{"fk_id_user":99,"fk_id_sala":1,"fk_id_periodos":[3],"dias":["Seg"],"data_inicio":"2024-03-04","data_fim":"2024-03-04"}`
	c, rec := newCtx(http.MethodPost, "/reserva", body, 7, "comum")

	require.NoError(t, f.handler.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateReservaRejectsEmptyExpansion(t *testing.T) {
	f := newReservaFixture(t)

	f.expectUsuario(7)
	f.expectSala(1)

	// 2024-03-05 is a Ter; asking for Seg in a one day range yields no
	// occurrences.
	body := `{"fk_id_user":7,"fk_id_sala":1,"fk_id_periodos":[3],"dias":["Seg"],"data_inicio":"2024-03-05","data_fim":"2024-03-05"}`
	c, rec := newCtx(http.MethodPost, "/reserva", body, 7, "comum")

	require.NoError(t, f.handler.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteReservaOnlyOwnerOrAdmin(t *testing.T) {
	f := newReservaFixture(t)

	f.mock.ExpectQuery("SELECT id_reserva, fk_id_usuario").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id_reserva", "fk_id_usuario", "fk_id_sala", "fk_id_periodo", "data", "dias", "serie", "created_at"}).
			AddRow(10, 99, 1, 3, "2024-03-04", "Seg", "serie-1", time.Now()))

	c, rec := newCtx(http.MethodDelete, "/reserva/10", "", 7, "comum")
	c.SetParamNames("id")
	c.SetParamValues("10")

	require.NoError(t, f.handler.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteReservaOwnerFreesSlot(t *testing.T) {
	f := newReservaFixture(t)

	f.mock.ExpectQuery("SELECT id_reserva, fk_id_usuario").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id_reserva", "fk_id_usuario", "fk_id_sala", "fk_id_periodo", "data", "dias", "serie", "created_at"}).
			AddRow(10, 7, 1, 3, "2024-03-04", "Seg", "serie-1", time.Now()))
	f.mock.ExpectExec("DELETE FROM reservas WHERE id_reserva").
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newCtx(http.MethodDelete, "/reserva/10", "", 7, "comum")
	c.SetParamNames("id")
	c.SetParamValues("10")

	require.NoError(t, f.handler.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHorariosSplitsCatalog(t *testing.T) {
	f := newReservaFixture(t)

	f.expectSala(1)
	f.mock.ExpectQuery("SELECT id_periodo, horario_inicio, horario_fim FROM periodos").
		WillReturnRows(sqlmock.NewRows([]string{"id_periodo", "horario_inicio", "horario_fim"}).
			AddRow(1, "07:00:00", "07:50:00").
			AddRow(2, "07:50:00", "08:40:00"))
	f.mock.ExpectQuery("SELECT fk_id_periodo FROM reservas").
		WithArgs(uint64(1), "2099-01-05").
		WillReturnRows(sqlmock.NewRows([]string{"fk_id_periodo"}).AddRow(2))

	c, rec := newCtx(http.MethodGet, "/reserva/horarios/1/2099-01-05", "", 7, "comum")
	c.SetParamNames("id_sala", "data")
	c.SetParamValues("1", "2099-01-05")

	require.NoError(t, f.handler.Horarios(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Horarios struct {
			Disponiveis   []struct{ Inicio, Fim string } `json:"Disponiveis"`
			Indisponiveis []struct{ Inicio, Fim string } `json:"Indisponiveis"`
		} `json:"horarios"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Horarios.Disponiveis, 1)
	require.Len(t, resp.Horarios.Indisponiveis, 1)
	assert.Equal(t, "07:00", resp.Horarios.Disponiveis[0].Inicio)
	assert.Equal(t, "07:50", resp.Horarios.Indisponiveis[0].Inicio)
}

func TestListByUserGroupsByDate(t *testing.T) {
	f := newReservaFixture(t)

	f.mock.ExpectQuery("SELECT r.id_reserva, r.fk_id_usuario, u.nome").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_reserva", "fk_id_usuario", "nome", "data", "dias", "serie",
			"id_sala", "numero", "descricao", "bloco",
			"id_periodo", "horario_inicio", "horario_fim",
		}).
			AddRow(10, 7, "Ana", "2099-01-05", "Seg", "serie-1", 1, "101", "Sala de aula", "A", 1, "07:00:00", "07:50:00").
			AddRow(11, 7, "Ana", "2099-01-05", "Seg", "serie-1", 1, "101", "Sala de aula", "A", 2, "07:50:00", "08:40:00").
			AddRow(12, 7, "Ana", "2099-01-12", "Seg", "serie-1", 1, "101", "Sala de aula", "A", 1, "07:00:00", "07:50:00"))

	c, rec := newCtx(http.MethodGet, "/reserva/usuario/7", "", 7, "comum")
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, f.handler.ListByUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reservas map[string][]struct {
			Numero   string `json:"numero"`
			Periodos []struct {
				IDReserva uint64 `json:"id_reserva"`
				Passou    bool   `json:"passou"`
			} `json:"periodos"`
		} `json:"reservas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Reservas, 2)
	require.Len(t, resp.Reservas["2099-01-05"], 1)
	assert.Len(t, resp.Reservas["2099-01-05"][0].Periodos, 2)
	assert.False(t, resp.Reservas["2099-01-05"][0].Periodos[0].Passou)
}
