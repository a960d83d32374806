package model

import "time"

// Account types. Admins manage rooms and can act on any reservation;
// comum users only manage their own.
const (
	TipoAdmin = "admin"
	TipoComum = "comum"
)

// Usuario represents an application user record as stored in the
// `usuarios` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Nome      – display name.
//  Email     – unique email address.
//  CPF       – unique national identity number, immutable after creation.
//  SenhaHash – bcrypt hashed password.
//  Tipo      – account type ("admin" or "comum").
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Usuario struct {
	ID        uint64    // usuarios.id_usuario
	Nome      string    // usuarios.nome
	Email     string    // usuarios.email
	CPF       string    // usuarios.cpf
	SenhaHash string    // usuarios.senha
	Tipo      string    // usuarios.tipo
	CreatedAt time.Time // usuarios.created_at
	UpdatedAt time.Time // usuarios.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.fk_id_usuario
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
