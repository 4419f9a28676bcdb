package domain

import (
	"database/sql"
	"time"
)

// Donor is a registered blood donor (donors table). Owned by one user account
// and removed with it.
type Donor struct {
	DonorID string `db:"donor_id"`
	UserID  string `db:"user_id"`

	BloodType   BloodType `db:"blood_group"`
	IsAvailable bool      `db:"is_available"`

	DateOfBirth      sql.NullTime   `db:"date_of_birth"`
	Gender           sql.NullString `db:"gender"`
	Weight           sql.NullInt64  `db:"weight"`
	City             string         `db:"city"`
	State            sql.NullString `db:"state"`
	Address          sql.NullString `db:"address"`
	LastDonationDate sql.NullTime   `db:"last_donation_date"`
	MedicalNotes     sql.NullString `db:"medical_conditions"`

	CreatedAt time.Time `db:"created_at"`
}

// DonorProfile joins a donor with the identity fields of its owning account,
// for directory listings and response views.
type DonorProfile struct {
	Donor
	FullName string         `db:"full_name"`
	Email    string         `db:"email"`
	Phone    sql.NullString `db:"phone"`
}
