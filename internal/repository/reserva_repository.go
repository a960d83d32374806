package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/reserva-salas/backend/internal/model"
	"github.com/reserva-salas/backend/internal/schedule"
)

// ReservaRepo provides operations over the reservas table. A
// reservation row is one (sala, periodo, data) occurrence; recurring
// bookings insert many rows sharing a serie uuid. All dates cross
// this layer as "YYYY-MM-DD" strings: queries format the DATE column
// explicitly so values never pass through a timezone-aware scan.
type ReservaRepo struct{ DB *sql.DB }

func NewReservaRepo(db *sql.DB) *ReservaRepo { return &ReservaRepo{DB: db} }

// FindConflictsTx returns, within the given transaction, every
// candidate slot that already has a reservation. The result preserves
// the candidate order so conflict reports are deterministic.
func (r *ReservaRepo) FindConflictsTx(ctx context.Context, tx *sql.Tx, slots []schedule.Slot) ([]schedule.Slot, error) {
	if len(slots) == 0 {
		return nil, nil
	}
	// All slots of one request share the sala; collect the dates and
	// compare (periodo, data) pairs in memory.
	salaID := slots[0].SalaID
	dateSet := make(map[string]bool, len(slots))
	for _, s := range slots {
		dateSet[s.Data] = true
	}
	placeholders := make([]string, 0, len(dateSet))
	args := []interface{}{salaID}
	for d := range dateSet {
		placeholders = append(placeholders, "?")
		args = append(args, d)
	}
	q := `SELECT fk_id_periodo, DATE_FORMAT(data, '%Y-%m-%d')
	      FROM reservas
	      WHERE fk_id_sala = ? AND data IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	taken := make(map[schedule.Slot]bool)
	for rows.Next() {
		var periodoID uint64
		var data string
		if err := rows.Scan(&periodoID, &data); err != nil {
			return nil, err
		}
		taken[schedule.Slot{SalaID: salaID, PeriodoID: periodoID, Data: data}] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var conflicts []schedule.Slot
	for _, s := range slots {
		if taken[s] {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts, nil
}

// CreateBatchTx inserts one reservation row per candidate slot inside
// the given transaction and returns the created records. The caller
// runs FindConflictsTx first for a descriptive report; a concurrent
// racer that slips between the check and the insert still hits the
// uk_slot unique key, surfaced here as ErrReservaConflito so the
// caller rolls the whole request back.
func (r *ReservaRepo) CreateBatchTx(ctx context.Context, tx *sql.Tx, userID uint64, slots []schedule.Slot, dias, serie string) ([]model.Reserva, error) {
	const q = `INSERT INTO reservas (fk_id_usuario, fk_id_sala, fk_id_periodo, data, dias, serie)
	           VALUES (?, ?, ?, ?, ?, ?)`
	created := make([]model.Reserva, 0, len(slots))
	for _, s := range slots {
		res, err := tx.ExecContext(ctx, q, userID, s.SalaID, s.PeriodoID, s.Data, dias, serie)
		if err != nil {
			if isDuplicate(err) {
				return nil, ErrReservaConflito
			}
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		created = append(created, model.Reserva{
			ID:        uint64(id),
			UserID:    userID,
			SalaID:    s.SalaID,
			PeriodoID: s.PeriodoID,
			Data:      s.Data,
			Dias:      dias,
			Serie:     serie,
		})
	}
	return created, nil
}

// PeriodosOcupados returns the set of period ids with a reservation on
// the given room and date. The availability resolver reads this
// directly from committed state; results are never cached.
func (r *ReservaRepo) PeriodosOcupados(ctx context.Context, salaID uint64, data string) (map[uint64]bool, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT fk_id_periodo FROM reservas WHERE fk_id_sala=? AND data=?",
		salaID, data)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// GetByID fetches a single reservation row.
func (r *ReservaRepo) GetByID(ctx context.Context, id uint64) (model.Reserva, error) {
	var res model.Reserva
	err := r.DB.QueryRowContext(ctx,
		`SELECT id_reserva, fk_id_usuario, fk_id_sala, fk_id_periodo,
		        DATE_FORMAT(data, '%Y-%m-%d'), dias, serie, created_at
		 FROM reservas WHERE id_reserva=? LIMIT 1`,
		id).Scan(&res.ID, &res.UserID, &res.SalaID, &res.PeriodoID, &res.Data, &res.Dias, &res.Serie, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return res, ErrReservaNotFound
	}
	return res, err
}

// Delete removes exactly one occurrence. Authorization (owner or
// admin) is decided by the handler before calling here.
func (r *ReservaRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reservas WHERE id_reserva=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservaNotFound
	}
	return nil
}

// ReservaDetail is a reservation row joined with its room and period,
// as consumed by the calendar screens. Nome is null when the owning
// user has been deleted; the history row survives.
type ReservaDetail struct {
	ID            uint64  `json:"id_reserva"`
	UserID        uint64  `json:"fk_id_usuario"`
	Nome          *string `json:"nome,omitempty"`
	Data          string  `json:"data"`
	Dias          string  `json:"dias"`
	Serie         string  `json:"serie"`
	SalaID        uint64  `json:"id_sala"`
	Numero        string  `json:"numero"`
	Descricao     string  `json:"descricao"`
	Bloco         string  `json:"bloco"`
	PeriodoID     uint64  `json:"id_periodo"`
	HorarioInicio string  `json:"horario_inicio"`
	HorarioFim    string  `json:"horario_fim"`
}

const detailQuery = `SELECT r.id_reserva, r.fk_id_usuario, u.nome,
	       DATE_FORMAT(r.data, '%Y-%m-%d'), r.dias, r.serie,
	       s.id_sala, s.numero, s.descricao, s.bloco,
	       p.id_periodo, p.horario_inicio, p.horario_fim
	FROM reservas r
	JOIN salas s ON s.id_sala = r.fk_id_sala
	JOIN periodos p ON p.id_periodo = r.fk_id_periodo
	LEFT JOIN usuarios u ON u.id_usuario = r.fk_id_usuario`

// ListByUser returns every reservation of one user with room and
// period detail, ordered by date then start time for calendar
// grouping.
func (r *ReservaRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservaDetail, error) {
	q := detailQuery + ` WHERE r.fk_id_usuario = ? ORDER BY r.data, p.horario_inicio`
	return r.queryDetails(ctx, q, userID)
}

// ListByData returns every reservation on one date across all rooms
// and users, for the admin calendar.
func (r *ReservaRepo) ListByData(ctx context.Context, data string) ([]ReservaDetail, error) {
	q := detailQuery + ` WHERE r.data = ? ORDER BY s.numero, p.horario_inicio`
	return r.queryDetails(ctx, q, data)
}

// ListAll returns every reservation, newest dates first.
func (r *ReservaRepo) ListAll(ctx context.Context) ([]ReservaDetail, error) {
	q := detailQuery + ` ORDER BY r.data DESC, s.numero, p.horario_inicio`
	return r.queryDetails(ctx, q)
}

func (r *ReservaRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]ReservaDetail, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservaDetail, 0)
	for rows.Next() {
		var d ReservaDetail
		var nome sql.NullString
		if err := rows.Scan(
			&d.ID, &d.UserID, &nome,
			&d.Data, &d.Dias, &d.Serie,
			&d.SalaID, &d.Numero, &d.Descricao, &d.Bloco,
			&d.PeriodoID, &d.HorarioInicio, &d.HorarioFim,
		); err != nil {
			return nil, err
		}
		if nome.Valid {
			n := nome.String
			d.Nome = &n
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
