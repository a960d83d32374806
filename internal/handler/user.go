package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reserva-salas/backend/internal/config"
	"github.com/reserva-salas/backend/internal/middleware"
	"github.com/reserva-salas/backend/internal/model"
	"github.com/reserva-salas/backend/internal/repository"
)

// UserHandler serves account management endpoints. Registration is
// public; every other route requires a token, and reading or mutating
// an account other than your own requires the admin tipo.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

type createUserReq struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Senha string `json:"senha"`
	Tipo  string `json:"tipo"`
}

type updateUserReq struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"` // empty keeps the current password
	Tipo  string `json:"tipo"`  // only an admin caller may change this
}

// usuarioResp is the account object returned by the read endpoints.
// The password hash never leaves the server.
type usuarioResp struct {
	ID    uint64 `json:"id_usuario"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Tipo  string `json:"tipo"`
}

func toUsuarioResp(u model.Usuario) usuarioResp {
	return usuarioResp{ID: u.ID, Nome: u.Nome, Email: u.Email, CPF: u.CPF, Tipo: u.Tipo}
}

// Create handles POST /user. Accounts default to tipo "comum"; the
// admin tipo is only honored when the caller is itself an admin, so
// open registration cannot mint administrators.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.CPF = strings.TrimSpace(req.CPF)
	if req.Nome == "" || req.Email == "" || req.CPF == "" || req.Senha == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome, email, cpf e senha obrigatorios"})
	}
	tipo := strings.ToLower(strings.TrimSpace(req.Tipo))
	if tipo != model.TipoAdmin || !middleware.IsAdmin(c) {
		tipo = model.TipoComum
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Nome, req.Email, req.CPF, req.Senha, tipo, h.Cfg.BcryptCost)
	if err != nil {
		switch err {
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email ja cadastrado"})
		case repository.ErrCPFExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cpf ja cadastrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusCreated, usuarioResp{
		ID: uid, Nome: req.Nome, Email: req.Email, CPF: req.CPF, Tipo: tipo,
	})
}

// List handles GET /user (admin only, enforced by middleware).
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]usuarioResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUsuarioResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"usuarios": out})
}

// Get handles GET /user/:id. A user may read their own account; an
// admin may read anyone's.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if !selfOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrUsuarioNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario nao encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"usuario": toUsuarioResp(u)})
}

// Update handles PUT /user/:id. CPF is immutable and silently ignored
// if sent; tipo changes require an admin caller.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if !selfOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Nome == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome e email obrigatorios"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cur, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrUsuarioNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario nao encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	tipo := strings.ToLower(strings.TrimSpace(req.Tipo))
	if tipo == "" || !middleware.IsAdmin(c) {
		tipo = cur.Tipo
	}
	if tipo != model.TipoAdmin && tipo != model.TipoComum {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tipo invalido"})
	}

	if err := h.Users.Update(ctx, id, req.Nome, req.Email, req.Senha, tipo, h.Cfg.BcryptCost); err != nil {
		switch err {
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email ja cadastrado"})
		case repository.ErrUsuarioNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario nao encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, usuarioResp{
		ID: id, Nome: req.Nome, Email: req.Email, CPF: cur.CPF, Tipo: tipo,
	})
}

// Delete handles DELETE /user/:id. Past reservations of the account
// remain as history; future booking attempts for the id fail because
// the booking engine validates the user first.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if !selfOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrUsuarioNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario nao encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}

// selfOrAdmin reports whether the authenticated caller is the user
// identified by id, or an admin.
func selfOrAdmin(c echo.Context, id uint64) bool {
	if middleware.IsAdmin(c) {
		return true
	}
	uid, ok := middleware.CurrentUserID(c)
	return ok && uid == id
}
