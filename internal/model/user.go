package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Passwords are stored as bcrypt hashes only; handlers expose
// a trimmed-down view (id, name, email) when embedding a user in a
// reservation response.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – role name (ADMIN, ASSISTANT or CLIENT).
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only a
// SHA-256 hash of the raw token is persisted.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
