// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservaConfirmadaEvent is published when a booking request commits.
// One event covers the whole recurrence request; Datas lists every
// concrete occurrence created. Downstream consumers can log, notify
// or feed analytics without querying the primary database.
type ReservaConfirmadaEvent struct {
	Serie        string   `json:"serie"`
	UserID       uint64   `json:"fk_id_usuario"`
	SalaID       uint64   `json:"fk_id_sala"`
	SalaNumero   string   `json:"numero"`
	Bloco        string   `json:"bloco"`
	PeriodoIDs   []uint64 `json:"periodos"`
	Dias         []string `json:"dias"`
	Datas        []string `json:"datas"`
	ConfirmadaEm string   `json:"confirmada_em"`
}
