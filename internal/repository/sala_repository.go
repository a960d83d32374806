package repository

import (
	"context"
	"database/sql"

	"github.com/reserva-salas/backend/internal/model"
)

// SalaRepo provides CRUD operations over the salas table. Rooms are
// administrator-managed reference data: created and deleted rarely,
// listed constantly by the booking screens.
type SalaRepo struct{ DB *sql.DB }

func NewSalaRepo(db *sql.DB) *SalaRepo { return &SalaRepo{DB: db} }

const salaCols = "id_sala,numero,descricao,capacidade,bloco,created_at,updated_at"

// Create inserts a room. A duplicate numero maps to ErrSalaExists.
func (r *SalaRepo) Create(ctx context.Context, numero, descricao string, capacidade uint32, bloco string) (model.Sala, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO salas (numero, descricao, capacidade, bloco) VALUES (?,?,?,?)",
		numero, descricao, capacidade, bloco)
	if err != nil {
		if isDuplicate(err) {
			return model.Sala{}, ErrSalaExists
		}
		return model.Sala{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Sala{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a room by primary key.
func (r *SalaRepo) GetByID(ctx context.Context, id uint64) (model.Sala, error) {
	var s model.Sala
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+salaCols+" FROM salas WHERE id_sala=? LIMIT 1",
		id).Scan(&s.ID, &s.Numero, &s.Descricao, &s.Capacidade, &s.Bloco, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return s, ErrSalaNotFound
	}
	return s, err
}

// GetByNumero fetches a room by its display number.
func (r *SalaRepo) GetByNumero(ctx context.Context, numero string) (model.Sala, error) {
	var s model.Sala
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+salaCols+" FROM salas WHERE numero=? LIMIT 1",
		numero).Scan(&s.ID, &s.Numero, &s.Descricao, &s.Capacidade, &s.Bloco, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return s, ErrSalaNotFound
	}
	return s, err
}

// List returns every room, optionally filtered by bloco when the
// argument is non-empty. Ordering by bloco then numero matches the
// grid the client renders.
func (r *SalaRepo) List(ctx context.Context, bloco string) ([]model.Sala, error) {
	q := "SELECT " + salaCols + " FROM salas"
	args := []interface{}{}
	if bloco != "" {
		q += " WHERE bloco=?"
		args = append(args, bloco)
	}
	q += " ORDER BY bloco, numero"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Sala, 0)
	for rows.Next() {
		var s model.Sala
		if err := rows.Scan(&s.ID, &s.Numero, &s.Descricao, &s.Capacidade, &s.Bloco, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteByNumero removes a room unless reservations dated hoje or
// later still reference it, in which case ErrSalaEmUso is returned
// and nothing changes. The check and the delete run in one
// transaction so a concurrent booking cannot slip between them.
func (r *SalaRepo) DeleteByNumero(ctx context.Context, numero, hoje string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var id uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id_sala FROM salas WHERE numero=? LIMIT 1", numero).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrSalaNotFound
	}
	if err != nil {
		return err
	}

	var ativos int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservas WHERE fk_id_sala=? AND data >= ?", id, hoje).Scan(&ativos)
	if err != nil {
		return err
	}
	if ativos > 0 {
		return ErrSalaEmUso
	}

	// Past reservations block the FK; they are history and go with the room.
	if _, err := tx.ExecContext(ctx, "DELETE FROM reservas WHERE fk_id_sala=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM salas WHERE id_sala=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
