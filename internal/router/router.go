// Package router wires HTTP routes to their handlers and middleware.
// Paths follow the mobile client exactly, without an API version
// prefix.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/reserva-salas/backend/internal/handler"
	"github.com/reserva-salas/backend/internal/middleware"
)

// Deps bundles everything route registration needs. PeriodoCache is
// optional; when non-nil it is applied only to GET /periodo, the one
// route serving immutable reference data. Availability routes are
// never cached so a cancellation frees a slot immediately.
type Deps struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Salas        *handler.SalaHandler
	Periodos     *handler.PeriodoHandler
	Reservas     *handler.ReservaHandler
	JWTSecret    string
	PeriodoCache echo.MiddlewareFunc
}

// Register mounts every route on the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Open routes: login and account registration.
	e.POST("/user/login", d.Auth.Login)
	e.POST("/user/refresh", d.Auth.Refresh)
	e.POST("/user/logout", d.Auth.Logout)
	e.POST("/user", d.Users.Create)

	auth := middleware.JWTAuth(d.JWTSecret)
	admin := middleware.RequireTipo("admin")

	// Account management.
	e.GET("/user", d.Users.List, auth, admin)
	e.GET("/user/:id", d.Users.Get, auth)
	e.PUT("/user/:id", d.Users.Update, auth)
	e.DELETE("/user/:id", d.Users.Delete, auth)

	// Room registry.
	e.GET("/sala", d.Salas.List, auth)
	e.GET("/sala/:bloco", d.Salas.ListByBloco, auth)
	e.POST("/sala", d.Salas.Create, auth, admin)
	e.DELETE("/sala/:numero", d.Salas.Delete, auth, admin)

	// Period catalog and availability.
	if d.PeriodoCache != nil {
		e.GET("/periodo", d.Periodos.List, auth, d.PeriodoCache)
	} else {
		e.GET("/periodo", d.Periodos.List, auth)
	}
	e.GET("/periodo/status", d.Periodos.Status, auth)
	e.GET("/reserva/horarios/:id_sala/:data", d.Reservas.Horarios, auth)

	// Booking and cancellation. /schedule is a legacy alias the older
	// client revision still calls.
	e.POST("/reserva", d.Reservas.Create, auth)
	e.POST("/schedule", d.Reservas.Create, auth)
	e.GET("/reserva", d.Reservas.ListAll, auth, admin)
	e.GET("/reserva/usuario/:id", d.Reservas.ListByUser, auth)
	e.GET("/reservas/data/:data", d.Reservas.ListByData, auth)
	e.DELETE("/reserva/:id", d.Reservas.Delete, auth)
}
