package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/reserva-salas/backend/internal/middleware"
	"github.com/reserva-salas/backend/internal/queue"
	"github.com/reserva-salas/backend/internal/repository"
	"github.com/reserva-salas/backend/internal/schedule"
	queue_publisher "github.com/reserva-salas/backend/internal/service"
)

// ReservaHandler implements booking, availability and cancellation.
// Booking expands a recurrence request into concrete (sala, periodo,
// data) slots and inserts them in one transaction; any conflict rolls
// the whole request back.
type ReservaHandler struct {
	DB       *sql.DB
	Reservas *repository.ReservaRepo
	Salas    *repository.SalaRepo
	Periodos *repository.PeriodoRepo
	Users    *repository.UserRepo
}

func NewReservaHandler(db *sql.DB, r *repository.ReservaRepo, s *repository.SalaRepo, p *repository.PeriodoRepo, u *repository.UserRepo) *ReservaHandler {
	return &ReservaHandler{DB: db, Reservas: r, Salas: s, Periodos: p, Users: u}
}

// createReservaReq accepts both request shapes the client has used:
// the recurrence form (fk_id_user, dias, data_inicio, data_fim and one
// or more period ids) and the older single-occurrence form
// (id_usuario, data, horarioInicio, horarioFim).
type createReservaReq struct {
	FkIDUser     uint64   `json:"fk_id_user"`
	IDUsuario    uint64   `json:"id_usuario"`
	FkIDSala     uint64   `json:"fk_id_sala"`
	FkIDPeriodo  uint64   `json:"fk_id_periodo"`
	FkIDPeriodos []uint64 `json:"fk_id_periodos"`
	Dias         []string `json:"dias"`
	DataInicio   string   `json:"data_inicio"`
	DataFim      string   `json:"data_fim"`

	Data          string `json:"data"`
	HorarioInicio string `json:"horarioInicio"`
	HorarioFim    string `json:"horarioFim"`
}

type reservaCreated struct {
	ID        uint64 `json:"id_reserva"`
	UserID    uint64 `json:"fk_id_usuario"`
	SalaID    uint64 `json:"fk_id_sala"`
	PeriodoID uint64 `json:"fk_id_periodo"`
	Data      string `json:"data"`
	Dias      string `json:"dias"`
	Serie     string `json:"serie"`
}

// Create handles POST /reserva and its POST /schedule alias.
func (h *ReservaHandler) Create(c echo.Context) error {
	var req createReservaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	callerID, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID := req.FkIDUser
	if userID == 0 {
		userID = req.IDUsuario
	}
	if userID == 0 {
		userID = callerID
	}
	// Booking on behalf of another user is an admin action.
	if userID != callerID && !middleware.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
	}
	if req.FkIDSala == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fk_id_sala obrigatorio"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if err == repository.ErrUsuarioNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario nao encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	sala, err := h.Salas.GetByID(ctx, req.FkIDSala)
	if err != nil {
		if err == repository.ErrSalaNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sala nao encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var (
		periodoIDs []uint64
		dias       []string
		dates      []string
	)
	if req.Data != "" && req.HorarioInicio != "" && req.HorarioFim != "" {
		// Older single-occurrence form: resolve the period from its
		// times and book exactly that date.
		if !schedule.ValidData(req.Data) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "data invalida"})
		}
		p, err := h.Periodos.GetByHorario(ctx, req.HorarioInicio, req.HorarioFim)
		if err != nil {
			if err == repository.ErrPeriodoNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "periodo nao encontrado"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		dia, err := schedule.DiaLabel(req.Data)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "data invalida"})
		}
		periodoIDs = []uint64{p.ID}
		dias = []string{dia}
		dates = []string{req.Data}
	} else {
		periodoIDs = req.FkIDPeriodos
		if len(periodoIDs) == 0 && req.FkIDPeriodo != 0 {
			periodoIDs = []uint64{req.FkIDPeriodo}
		}
		if len(periodoIDs) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ao menos um periodo obrigatorio"})
		}
		dias, err = schedule.NormalizeDias(req.Dias)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "dias invalidos"})
		}
		if !schedule.ValidData(req.DataInicio) || !schedule.ValidData(req.DataFim) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "data invalida"})
		}
		dates, err = schedule.ExpandDates(req.DataInicio, req.DataFim, dias)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(dates) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "nenhuma data no intervalo cai nos dias escolhidos"})
		}
		missing, err := h.Periodos.Exists(ctx, periodoIDs)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if len(missing) > 0 {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "periodo nao encontrado"})
		}
	}

	slots := schedule.ExpandSlots(sala.ID, periodoIDs, dates)
	serie := uuid.NewString()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	conflicts, err := h.Reservas.FindConflictsTx(ctx, tx, slots)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conflict check failed"})
	}
	if len(conflicts) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "horario ja reservado",
			"conflitos": conflicts,
		})
	}

	created, err := h.Reservas.CreateBatchTx(ctx, tx, userID, slots, strings.Join(dias, ","), serie)
	if err != nil {
		if err == repository.ErrReservaConflito {
			// A concurrent request won the slot between our check and
			// the insert; uk_slot caught it.
			return c.JSON(http.StatusConflict, echo.Map{"error": "horario ja reservado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reserva failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	out := make([]reservaCreated, 0, len(created))
	for _, r := range created {
		out = append(out, reservaCreated{
			ID: r.ID, UserID: r.UserID, SalaID: r.SalaID, PeriodoID: r.PeriodoID,
			Data: r.Data, Dias: r.Dias, Serie: r.Serie,
		})
	}

	// Best effort notification; the booking already committed.
	event := queue.ReservaConfirmadaEvent{
		Serie:        serie,
		UserID:       userID,
		SalaID:       sala.ID,
		SalaNumero:   sala.Numero,
		Bloco:        sala.Bloco,
		PeriodoIDs:   periodoIDs,
		Dias:         dias,
		Datas:        dates,
		ConfirmadaEm: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishReservaConfirmada(pubCtx, event)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"serie": serie, "reservas": out})
}

type horarioItem struct {
	Inicio string `json:"inicio"`
	Fim    string `json:"fim"`
}

// Horarios handles GET /reserva/horarios/:id_sala/:data, splitting the
// period catalog into available and unavailable time ranges for one
// room and date. Past dates report everything unavailable.
func (h *ReservaHandler) Horarios(c echo.Context) error {
	salaID, err := paramID(c, "id_sala")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_sala invalido"})
	}
	data := c.Param("data")
	if !schedule.ValidData(data) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data invalida"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Salas.GetByID(ctx, salaID); err != nil {
		if err == repository.ErrSalaNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sala nao encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	periodos, err := h.Periodos.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	ocupados, err := h.Reservas.PeriodosOcupados(ctx, salaID, data)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	ids := make([]uint64, len(periodos))
	for i, p := range periodos {
		ids[i] = p.ID
	}
	status := schedule.StatusFor(ids, ocupados, data, schedule.Hoje(time.UTC))

	disponiveis := make([]horarioItem, 0, len(periodos))
	indisponiveis := make([]horarioItem, 0)
	for _, p := range periodos {
		item := horarioItem{
			Inicio: schedule.HoraCurta(p.HorarioInicio),
			Fim:    schedule.HoraCurta(p.HorarioFim),
		}
		if status[p.ID] == schedule.StatusDisponivel {
			disponiveis = append(disponiveis, item)
		} else {
			indisponiveis = append(indisponiveis, item)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"horarios": echo.Map{
		"Disponiveis":   disponiveis,
		"Indisponiveis": indisponiveis,
	}})
}

// reservaPeriodo is one period inside a reservation card; Passou marks
// occurrences whose date is already gone so the client can dim them.
type reservaPeriodo struct {
	IDReserva     uint64 `json:"id_reserva"`
	IDPeriodo     uint64 `json:"id_periodo"`
	HorarioInicio string `json:"horario_inicio"`
	HorarioFim    string `json:"horario_fim"`
	Passou        bool   `json:"passou"`
}

// reservaCard groups the occurrences of one room on one date, the
// shape the calendar screens render.
type reservaCard struct {
	SalaID    uint64           `json:"id_sala"`
	Numero    string           `json:"numero"`
	Descricao string           `json:"descricao"`
	Bloco     string           `json:"bloco"`
	Dias      string           `json:"dias"`
	Serie     string           `json:"serie"`
	Nome      *string          `json:"nome,omitempty"`
	Periodos  []reservaPeriodo `json:"periodos"`
}

// groupByData folds detail rows into date keyed cards. Rows arrive
// ordered by date and start time, so appends preserve period order.
func groupByData(rows []repository.ReservaDetail, hoje string) map[string][]reservaCard {
	out := make(map[string][]reservaCard)
	type key struct {
		data   string
		salaID uint64
		serie  string
	}
	idx := make(map[key]int)
	for _, d := range rows {
		k := key{data: d.Data, salaID: d.SalaID, serie: d.Serie}
		p := reservaPeriodo{
			IDReserva:     d.ID,
			IDPeriodo:     d.PeriodoID,
			HorarioInicio: schedule.HoraCurta(d.HorarioInicio),
			HorarioFim:    schedule.HoraCurta(d.HorarioFim),
			Passou:        schedule.Passou(d.Data, hoje),
		}
		if i, ok := idx[k]; ok {
			cards := out[d.Data]
			cards[i].Periodos = append(cards[i].Periodos, p)
			continue
		}
		card := reservaCard{
			SalaID:    d.SalaID,
			Numero:    d.Numero,
			Descricao: d.Descricao,
			Bloco:     d.Bloco,
			Dias:      d.Dias,
			Serie:     d.Serie,
			Nome:      d.Nome,
			Periodos:  []reservaPeriodo{p},
		}
		out[d.Data] = append(out[d.Data], card)
		idx[k] = len(out[d.Data]) - 1
	}
	return out
}

// ListByUser handles GET /reserva/usuario/:id, the user's calendar.
// Reading another user's reservations requires the admin tipo.
func (h *ReservaHandler) ListByUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if !selfOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Reservas.ListByUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservas": groupByData(rows, schedule.Hoje(time.UTC))})
}

// ListByData handles GET /reservas/data/:data, the admin view of every
// reservation on one date.
func (h *ReservaHandler) ListByData(c echo.Context) error {
	data := c.Param("data")
	if !schedule.ValidData(data) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data invalida"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Reservas.ListByData(ctx, data)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservas": groupByData(rows, schedule.Hoje(time.UTC))})
}

// ListAll handles GET /reserva (admin), the full reservation history.
func (h *ReservaHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Reservas.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservas": groupByData(rows, schedule.Hoje(time.UTC))})
}

// Delete handles DELETE /reserva/:id. Only the owner or an admin may
// cancel; exactly one occurrence is removed and the freed slot is
// immediately bookable again.
func (h *ReservaHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reserva id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservas.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrReservaNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva nao encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !selfOrAdmin(c, res.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
	}

	if err := h.Reservas.Delete(ctx, id); err != nil {
		if err == repository.ErrReservaNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva nao encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
