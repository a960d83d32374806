package model

// Periodo is one fixed daily time slot shared by every room.  The
// catalog of periods is the discretization unit of booking: a
// reservation always covers exactly one period on one date.  Periods
// never overlap each other and horario_inicio is strictly before
// horario_fim.  This struct corresponds to a row in the `periodos`
// table.
//
// Fields:
//  ID            – primary key identifier.
//  HorarioInicio – start of the slot as "HH:MM:SS".
//  HorarioFim    – end of the slot as "HH:MM:SS".
type Periodo struct {
	ID            uint64 // periodos.id_periodo
	HorarioInicio string // periodos.horario_inicio
	HorarioFim    string // periodos.horario_fim
}
