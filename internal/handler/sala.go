package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reserva-salas/backend/internal/model"
	"github.com/reserva-salas/backend/internal/repository"
	"github.com/reserva-salas/backend/internal/schedule"
)

// SalaHandler serves the room registry endpoints. Listing is open to
// any authenticated user; create and delete are admin routes.
type SalaHandler struct {
	Salas *repository.SalaRepo
}

func NewSalaHandler(s *repository.SalaRepo) *SalaHandler {
	return &SalaHandler{Salas: s}
}

type createSalaReq struct {
	Numero     string `json:"numero"`
	Descricao  string `json:"descricao"`
	Capacidade uint32 `json:"capacidade"`
	Bloco      string `json:"bloco"`
}

type salaResp struct {
	ID         uint64 `json:"id_sala"`
	Numero     string `json:"numero"`
	Descricao  string `json:"descricao"`
	Capacidade uint32 `json:"capacidade"`
	Bloco      string `json:"bloco"`
}

func toSalaResp(s model.Sala) salaResp {
	return salaResp{ID: s.ID, Numero: s.Numero, Descricao: s.Descricao, Capacidade: s.Capacidade, Bloco: s.Bloco}
}

// List handles GET /sala, returning every room for the block picker.
func (h *SalaHandler) List(c echo.Context) error {
	return h.list(c, "")
}

// ListByBloco handles GET /sala/:bloco, the per-block room grid.
func (h *SalaHandler) ListByBloco(c echo.Context) error {
	bloco := strings.ToUpper(strings.TrimSpace(c.Param("bloco")))
	if !model.ValidBloco(bloco) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bloco invalido"})
	}
	return h.list(c, bloco)
}

func (h *SalaHandler) list(c echo.Context, bloco string) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	salas, err := h.Salas.List(ctx, bloco)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]salaResp, 0, len(salas))
	for _, s := range salas {
		out = append(out, toSalaResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"salas": out})
}

// Create handles POST /sala (admin). Duplicate numero is a conflict.
func (h *SalaHandler) Create(c echo.Context) error {
	var req createSalaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Numero = strings.TrimSpace(req.Numero)
	req.Descricao = strings.TrimSpace(req.Descricao)
	req.Bloco = strings.ToUpper(strings.TrimSpace(req.Bloco))
	if req.Numero == "" || req.Capacidade == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "numero e capacidade obrigatorios"})
	}
	if !model.ValidBloco(req.Bloco) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bloco invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Salas.Create(ctx, req.Numero, req.Descricao, req.Capacidade, req.Bloco)
	if err != nil {
		if err == repository.ErrSalaExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "sala ja cadastrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create sala failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"sala": toSalaResp(s)})
}

// Delete handles DELETE /sala/:numero (admin). A room with
// reservations dated today or later cannot be removed; the client
// must cancel those bookings first.
func (h *SalaHandler) Delete(c echo.Context) error {
	numero := strings.TrimSpace(c.Param("numero"))
	if numero == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "numero obrigatorio"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Salas.DeleteByNumero(ctx, numero, schedule.Hoje(time.UTC))
	if err != nil {
		switch err {
		case repository.ErrSalaNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sala nao encontrada"})
		case repository.ErrSalaEmUso:
			return c.JSON(http.StatusConflict, echo.Map{"error": "sala possui reservas ativas"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete sala failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
