package model

import "time"

// Reserva is the atomic unit of booking: one user holding one room for
// one period on one concrete date.  A recurring booking request is
// expanded into many Reserva rows that share the same Serie value.
// The `uk_slot` unique key on (fk_id_sala, fk_id_periodo, data)
// guarantees that at most one active reservation exists per slot.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who owns the reservation.
//  SalaID    – room being reserved.
//  PeriodoID – period being reserved.
//  Data      – concrete calendar date as "YYYY-MM-DD".
//  Dias      – weekday labels of the originating series, comma-joined
//              (e.g. "Seg,Qua"); kept for display on reservation cards.
//  Serie     – uuid shared by every row created from one recurrence
//              request.
//  CreatedAt – creation timestamp.
type Reserva struct {
	ID        uint64    // reservas.id_reserva
	UserID    uint64    // reservas.fk_id_usuario
	SalaID    uint64    // reservas.fk_id_sala
	PeriodoID uint64    // reservas.fk_id_periodo
	Data      string    // reservas.data (DATE, formatted YYYY-MM-DD)
	Dias      string    // reservas.dias
	Serie     string    // reservas.serie
	CreatedAt time.Time // reservas.created_at
}
