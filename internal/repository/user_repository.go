package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/reserva-salas/backend/internal/model"
	"github.com/reserva-salas/backend/internal/utils"
)

// UserRepo provides CRUD operations over the usuarios table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The password is hashed
// with bcrypt before touching the database. Duplicate email or cpf
// map to ErrEmailExists / ErrCPFExists via the MySQL 1062 code.
func (r *UserRepo) Create(ctx context.Context, nome, email, cpf, senha, tipo string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(senha, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO usuarios (nome, email, cpf, senha, tipo) VALUES (?,?,?,?,?)",
		nome, email, cpf, hash, tipo)
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(err.Error(), "uk_cpf") {
				return 0, ErrCPFExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userCols = "id_usuario,nome,email,cpf,senha,tipo,created_at,updated_at"

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.Usuario, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.Usuario
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM usuarios WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Nome, &u.Email, &u.CPF, &u.SenhaHash, &u.Tipo, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.Usuario, error) {
	var u model.Usuario
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM usuarios WHERE id_usuario=? LIMIT 1",
		id).Scan(&u.ID, &u.Nome, &u.Email, &u.CPF, &u.SenhaHash, &u.Tipo, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrUsuarioNotFound
	}
	return u, err
}

// List returns every user ordered by name. Used by admin screens.
func (r *UserRepo) List(ctx context.Context) ([]model.Usuario, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM usuarios ORDER BY nome, id_usuario")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Usuario, 0)
	for rows.Next() {
		var u model.Usuario
		if err := rows.Scan(&u.ID, &u.Nome, &u.Email, &u.CPF, &u.SenhaHash, &u.Tipo, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update changes nome, email and optionally the password of a user.
// CPF is immutable after creation and tipo can only be changed by an
// admin caller, which the handler enforces before calling here.
// senha may be empty to keep the current hash.
func (r *UserRepo) Update(ctx context.Context, id uint64, nome, email, senha, tipo string, cost int) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		res sql.Result
		err error
	)
	if senha != "" {
		var hash string
		hash, err = utils.HashPassword(senha, cost)
		if err != nil {
			return err
		}
		res, err = r.DB.ExecContext(ctx,
			"UPDATE usuarios SET nome=?, email=?, senha=?, tipo=? WHERE id_usuario=?",
			nome, email, hash, tipo, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE usuarios SET nome=?, email=?, tipo=? WHERE id_usuario=?",
			nome, email, tipo, id)
	}
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Row may exist with identical values; confirm before reporting.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a user row. Reservations referencing the user are
// kept as history; new bookings for the id fail because the booking
// engine validates the user before inserting.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM usuarios WHERE id_usuario=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUsuarioNotFound
	}
	return nil
}

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error code 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
