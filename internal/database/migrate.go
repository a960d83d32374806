package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements executed on startup.  Statements are
// idempotent so the migration can run on every boot.  The uk_slot key
// on reservas is the enforcement mechanism for the core invariant:
// at most one active reservation per (sala, periodo, data) triple.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS usuarios (
		id_usuario BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		nome       VARCHAR(120)  NOT NULL,
		email      VARCHAR(255)  NOT NULL,
		cpf        VARCHAR(14)   NOT NULL,
		senha      VARCHAR(100)  NOT NULL,
		tipo       ENUM('admin','comum') NOT NULL DEFAULT 'comum',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id_usuario),
		UNIQUE KEY uk_email (email),
		UNIQUE KEY uk_cpf (cpf)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS salas (
		id_sala    BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		numero     VARCHAR(10)  NOT NULL,
		descricao  VARCHAR(255) NOT NULL,
		capacidade INT UNSIGNED NOT NULL,
		bloco      ENUM('A','B','C','D') NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id_sala),
		UNIQUE KEY uk_numero (numero)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS periodos (
		id_periodo     BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		horario_inicio TIME NOT NULL,
		horario_fim    TIME NOT NULL,
		PRIMARY KEY (id_periodo),
		UNIQUE KEY uk_horario (horario_inicio, horario_fim)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// fk_id_usuario carries no FK constraint: deleting a user keeps
	// their reservation history, and the booking engine validates the
	// user exists before inserting new rows.
	`CREATE TABLE IF NOT EXISTS reservas (
		id_reserva    BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		fk_id_usuario BIGINT UNSIGNED NOT NULL,
		fk_id_sala    BIGINT UNSIGNED NOT NULL,
		fk_id_periodo BIGINT UNSIGNED NOT NULL,
		data          DATE NOT NULL,
		dias          VARCHAR(40) NOT NULL DEFAULT '',
		serie         CHAR(36) NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id_reserva),
		UNIQUE KEY uk_slot (fk_id_sala, fk_id_periodo, data),
		KEY idx_usuario (fk_id_usuario),
		KEY idx_data (data),
		KEY idx_serie (serie),
		CONSTRAINT fk_reservas_sala FOREIGN KEY (fk_id_sala) REFERENCES salas (id_sala),
		CONSTRAINT fk_reservas_periodo FOREIGN KEY (fk_id_periodo) REFERENCES periodos (id_periodo)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		fk_id_usuario BIGINT UNSIGNED NOT NULL,
		token_hash    CHAR(64) NOT NULL,
		expires_at    DATETIME NOT NULL,
		revoked_at    DATETIME NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uk_token_hash (token_hash),
		KEY idx_token_usuario (fk_id_usuario),
		CONSTRAINT fk_tokens_usuario FOREIGN KEY (fk_id_usuario) REFERENCES usuarios (id_usuario) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// periodoSeed holds the canonical 50-minute class slots shared by all
// rooms.  INSERT IGNORE keeps the seed idempotent against uk_horario.
var periodoSeed = [][2]string{
	{"07:00:00", "07:50:00"},
	{"07:50:00", "08:40:00"},
	{"08:40:00", "09:30:00"},
	{"09:50:00", "10:40:00"},
	{"10:40:00", "11:30:00"},
	{"13:00:00", "13:50:00"},
	{"13:50:00", "14:40:00"},
	{"14:40:00", "15:30:00"},
	{"15:50:00", "16:40:00"},
	{"16:40:00", "17:30:00"},
	{"19:00:00", "19:50:00"},
	{"19:50:00", "20:40:00"},
	{"20:40:00", "21:30:00"},
}

// Migrate creates the application tables and seeds the period catalog.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	const ins = `INSERT IGNORE INTO periodos (horario_inicio, horario_fim) VALUES (?, ?)`
	for _, p := range periodoSeed {
		if _, err := db.ExecContext(ctx, ins, p[0], p[1]); err != nil {
			return fmt.Errorf("seed periodos: %w", err)
		}
	}
	return nil
}
