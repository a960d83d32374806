package model

import "time"

// Blocos is the fixed set of building blocks rooms can belong to.
var Blocos = []string{"A", "B", "C", "D"}

// ValidBloco reports whether b is one of the known building blocks.
func ValidBloco(b string) bool {
	for _, v := range Blocos {
		if b == v {
			return true
		}
	}
	return false
}

// Sala describes a bookable shared room inside one of the building
// blocks.  Rooms are identified to users by their numero; the numeric
// primary key is internal.  This struct corresponds to a row in the
// `salas` table.
//
// Fields:
//  ID         – primary key identifier.
//  Numero     – unique display number of the room (e.g. "101").
//  Descricao  – free-form description shown on room cards.
//  Capacidade – seating capacity.
//  Bloco      – building block the room belongs to ("A".."D").
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Sala struct {
	ID         uint64    // salas.id_sala
	Numero     string    // salas.numero
	Descricao  string    // salas.descricao
	Capacidade uint32    // salas.capacidade
	Bloco      string    // salas.bloco
	CreatedAt  time.Time // salas.created_at
	UpdatedAt  time.Time // salas.updated_at
}
