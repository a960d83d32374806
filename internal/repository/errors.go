// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrSalaEmUso signals that a room cannot be
// deleted because active reservations still reference it.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrSalaNotFound is returned when no room matches the given id or
// numero. Handlers should translate this into an HTTP 404 response.
var ErrSalaNotFound = errors.New("sala not found")

// ErrPeriodoNotFound is returned when a requested period id does not
// exist in the catalog.
var ErrPeriodoNotFound = errors.New("periodo not found")

// ErrReservaNotFound is returned when no reservation matches the
// given id.
var ErrReservaNotFound = errors.New("reserva not found")

// ErrUsuarioNotFound is returned when no user matches the given id.
var ErrUsuarioNotFound = errors.New("usuario not found")

// ErrSalaExists is returned when creating a room whose numero is
// already registered. Handlers should translate this into an HTTP
// 409 response.
var ErrSalaExists = errors.New("sala numero already exists")

// ErrSalaEmUso is returned when a room delete is blocked by
// reservations dated today or later. Handlers should translate this
// into an HTTP 409 response.
var ErrSalaEmUso = errors.New("sala has active reservations")

// ErrReservaConflito is returned when a booking collides with an
// existing reservation on the same (sala, periodo, data) slot. The
// whole recurrence request is rolled back; handlers should translate
// this into an HTTP 409 response listing the conflicting slots.
var ErrReservaConflito = errors.New("slot already reserved")

// ErrEmailExists and ErrCPFExists are returned when user creation
// hits the corresponding unique keys.
var (
	ErrEmailExists = errors.New("email already exists")
	ErrCPFExists   = errors.New("cpf already exists")
)
