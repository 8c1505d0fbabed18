package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Staff users may create, update and delete every
// theatre resource; everybody else is read-only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  IsStaff      – elevated privilege flag.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsStaff      bool      // users.is_staff
	CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
