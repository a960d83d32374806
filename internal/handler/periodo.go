package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reserva-salas/backend/internal/repository"
	"github.com/reserva-salas/backend/internal/schedule"
)

// PeriodoHandler serves the period catalog and the per-period
// availability status used by the booking screen.
type PeriodoHandler struct {
	Periodos *repository.PeriodoRepo
	Reservas *repository.ReservaRepo
}

func NewPeriodoHandler(p *repository.PeriodoRepo, r *repository.ReservaRepo) *PeriodoHandler {
	return &PeriodoHandler{Periodos: p, Reservas: r}
}

type periodoResp struct {
	ID            uint64 `json:"id_periodo"`
	HorarioInicio string `json:"horario_inicio"`
	HorarioFim    string `json:"horario_fim"`
}

type periodoStatusResp struct {
	periodoResp
	Status string `json:"status"`
	Passou bool   `json:"passou"`
}

// List handles GET /periodo. The catalog is reference data and is the
// only cached route; availability is never served from cache.
func (h *PeriodoHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	periodos, err := h.Periodos.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]periodoResp, 0, len(periodos))
	for _, p := range periodos {
		out = append(out, periodoResp{ID: p.ID, HorarioInicio: p.HorarioInicio, HorarioFim: p.HorarioFim})
	}
	return c.JSON(http.StatusOK, echo.Map{"periodos": out})
}

// Status handles GET /periodo/status?idSala=&data=. Every period of
// the catalog is returned with exactly one of the three statuses for
// the given room and date.
func (h *PeriodoHandler) Status(c echo.Context) error {
	salaID, err := strconv.ParseUint(c.QueryParam("idSala"), 10, 64)
	if err != nil || salaID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "idSala invalido"})
	}
	data := c.QueryParam("data")
	if !schedule.ValidData(data) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data invalida"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

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

	out := make([]periodoStatusResp, 0, len(periodos))
	for _, p := range periodos {
		st := status[p.ID]
		out = append(out, periodoStatusResp{
			periodoResp: periodoResp{ID: p.ID, HorarioInicio: p.HorarioInicio, HorarioFim: p.HorarioFim},
			Status:      st,
			Passou:      st == schedule.StatusPassou,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"periodos": out})
}
