package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/reserva-salas/backend/internal/model"
)

// PeriodoRepo reads the period catalog. The catalog is read-mostly:
// it is seeded by the migration and rarely changes afterwards.
type PeriodoRepo struct{ DB *sql.DB }

func NewPeriodoRepo(db *sql.DB) *PeriodoRepo { return &PeriodoRepo{DB: db} }

// List returns every period ordered by start time.
func (r *PeriodoRepo) List(ctx context.Context) ([]model.Periodo, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id_periodo, horario_inicio, horario_fim FROM periodos ORDER BY horario_inicio")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Periodo, 0)
	for rows.Next() {
		var p model.Periodo
		if err := rows.Scan(&p.ID, &p.HorarioInicio, &p.HorarioFim); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Exists reports which of the given period ids are present in the
// catalog. It returns the ids that are missing, empty when all exist.
func (r *PeriodoRepo) Exists(ctx context.Context, ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := "SELECT id_periodo FROM periodos WHERE id_periodo IN (" + strings.Join(placeholders, ",") + ")"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[uint64]bool, len(ids))
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []uint64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// GetByHorario resolves a period from its start and end times. The
// client's older booking screen sends times instead of a period id;
// both "HH:MM" and "HH:MM:SS" forms are accepted.
func (r *PeriodoRepo) GetByHorario(ctx context.Context, inicio, fim string) (model.Periodo, error) {
	if len(inicio) == 5 {
		inicio += ":00"
	}
	if len(fim) == 5 {
		fim += ":00"
	}
	var p model.Periodo
	err := r.DB.QueryRowContext(ctx,
		"SELECT id_periodo, horario_inicio, horario_fim FROM periodos WHERE horario_inicio=? AND horario_fim=? LIMIT 1",
		inicio, fim).Scan(&p.ID, &p.HorarioInicio, &p.HorarioFim)
	if err == sql.ErrNoRows {
		return p, ErrPeriodoNotFound
	}
	return p, err
}
