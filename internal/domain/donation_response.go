package domain

import (
	"database/sql"
	"time"
)

// ResponseType is the donor's declared intent or outcome for a request.
type ResponseType string

const (
	ResponseInterested ResponseType = "Interested"
	ResponseConfirmed  ResponseType = "Confirmed"
	ResponseDonated    ResponseType = "Donated"
	ResponseCancelled  ResponseType = "Cancelled"
)

// IsValid reports whether t is a known response type.
func (t ResponseType) IsValid() bool {
	switch t {
	case ResponseInterested, ResponseConfirmed, ResponseDonated, ResponseCancelled:
		return true
	}
	return false
}

// DonationResponse is one donor's reply to one request (donation_responses
// table). At most one row per (request_id, donor_id).
type DonationResponse struct {
	ResponseID string `db:"response_id"`
	RequestID  string `db:"request_id"`
	DonorID    string `db:"donor_id"`

	ResponseType ResponseType   `db:"response_type"`
	Message      sql.NullString `db:"response_message"`
	Appointment  sql.NullTime   `db:"appointment_date"`

	DonationCompleted bool         `db:"donation_completed"`
	DonationDate      sql.NullTime `db:"donation_date"`

	CreatedAt time.Time `db:"created_at"`
}

// ResponseWithDonor joins a response with the responding donor's identity and
// contact details, for the owning hospital's view.
type ResponseWithDonor struct {
	DonationResponse
	BloodType  BloodType      `db:"blood_group"`
	City       string         `db:"city"`
	State      sql.NullString `db:"state"`
	DonorName  string         `db:"donor_name"`
	DonorEmail string         `db:"donor_email"`
	DonorPhone sql.NullString `db:"donor_phone"`
}

// ResponseWithRequest joins a response with the public fields of the request
// it answers, for the donor's own view.
type ResponseWithRequest struct {
	DonationResponse
	PatientName   string        `db:"patient_name"`
	BloodType     BloodType     `db:"blood_group"`
	HospitalName  string        `db:"hospital_name"`
	City          string        `db:"city"`
	ContactPerson string        `db:"contact_person"`
	ContactPhone  string        `db:"contact_phone"`
	RequestStatus RequestStatus `db:"request_status"`
}
