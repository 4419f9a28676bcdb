package domain

import (
	"database/sql"
	"time"
)

// User is an account row (users table). One account per person; donors
// additionally own exactly one Donor row.
type User struct {
	UserID       string `db:"user_id"`
	FullName     string `db:"full_name"`
	Email        string `db:"email"` // unique
	PasswordHash []byte `db:"password_hash"`

	Phone    sql.NullString `db:"phone"`
	Role     Role           `db:"role"`
	IsActive bool           `db:"is_active"`

	CreatedAt time.Time `db:"created_at"`
}
