package domain

import (
	"database/sql"
	"time"
)

// Urgency classifies how soon a blood request must be satisfied.
type Urgency string

const (
	UrgencyNormal   Urgency = "Normal"
	UrgencyUrgent   Urgency = "Urgent"
	UrgencyCritical Urgency = "Critical"
)

// Rank orders urgencies for sorting: Critical > Urgent > Normal.
// The source DB relied on enum column ordering; Postgres varchar would sort
// alphabetically, so the rank is explicit.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyUrgent:
		return 2
	case UrgencyNormal:
		return 1
	}
	return 0
}

// IsValid reports whether u is a known urgency.
func (u Urgency) IsValid() bool {
	return u.Rank() > 0
}

// RequestStatus is the blood request lifecycle state.
// Open is initial; Fulfilled and Closed are terminal for automatic
// transitions. An owning hospital or admin may still set any status manually.
type RequestStatus string

const (
	StatusOpen      RequestStatus = "Open"
	StatusFulfilled RequestStatus = "Fulfilled"
	StatusClosed    RequestStatus = "Closed"
)

// IsValid reports whether s is a known request status.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusFulfilled, StatusClosed:
		return true
	}
	return false
}

// BloodRequest is a hospital's posted need for blood units (blood_requests table).
type BloodRequest struct {
	RequestID  string `db:"request_id"`
	HospitalID string `db:"hospital_id"` // owning user account

	PatientName   string    `db:"patient_name"`
	BloodType     BloodType `db:"blood_group"`
	UnitsRequired int       `db:"units_required"`

	Urgency Urgency       `db:"urgency"`
	Status  RequestStatus `db:"status"`

	HospitalName    string         `db:"hospital_name"`
	HospitalAddress string         `db:"hospital_address"`
	City            string         `db:"city"`
	State           sql.NullString `db:"state"`
	ContactPerson   string         `db:"contact_person"`
	ContactPhone    string         `db:"contact_phone"`
	RequiredBy      time.Time      `db:"required_by"`
	Description     sql.NullString `db:"description"`

	CreatedAt time.Time `db:"created_at"`
}

// RequestDetail joins a request with the contact name of the posting account.
type RequestDetail struct {
	BloodRequest
	HospitalContactName string `db:"hospital_contact_name"`
}
