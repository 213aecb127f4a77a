package model

import "time"

// User is an account that can browse showtimes and book seats. Roles are
// CUSTOMER and ADMIN; admins manage the movie and theater catalog.
//
// Fields:
//
//	ID           – primary key identifier.
//	Email        – unique login email.
//	PasswordHash – bcrypt hash of the password.
//	Role         – CUSTOMER or ADMIN.
//	CreatedAt    – creation timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
