package repository

import (
	"context"

	"bloodlink-data/internal/domain"
)

// RequestFilters narrows request listings. Zero values mean "no filter".
type RequestFilters struct {
	BloodType domain.BloodType     // exact match
	City      string               // substring, case-insensitive
	Status    domain.RequestStatus // exact match
	Urgency   domain.Urgency       // exact match
}

// RequestPatch carries partial blood request updates. A nil field is left
// untouched.
type RequestPatch struct {
	PatientName     *string
	BloodType       *domain.BloodType
	UnitsRequired   *int
	Urgency         *domain.Urgency
	Status          *domain.RequestStatus
	HospitalName    *string
	HospitalAddress *string
	City            *string
	State           *string
	ContactPerson   *string
	ContactPhone    *string
	RequiredBy      *string // YYYY-MM-DD
	Description     *string
}

// IsEmpty reports whether the patch would change nothing.
func (p RequestPatch) IsEmpty() bool {
	return p.PatientName == nil && p.BloodType == nil && p.UnitsRequired == nil &&
		p.Urgency == nil && p.Status == nil && p.HospitalName == nil &&
		p.HospitalAddress == nil && p.City == nil && p.State == nil &&
		p.ContactPerson == nil && p.ContactPhone == nil && p.RequiredBy == nil &&
		p.Description == nil
}

// RequestsRepository manages blood request rows.
type RequestsRepository interface {
	GetRequest(ctx context.Context, requestID string) (*domain.RequestDetail, error)
	// ListRequests orders by urgency rank descending (Critical > Urgent >
	// Normal), then creation time descending.
	ListRequests(ctx context.Context, filters RequestFilters) ([]*domain.RequestDetail, error)
	CreateRequest(ctx context.Context, req *domain.BloodRequest) (string, error)
	UpdateRequest(ctx context.Context, requestID string, patch RequestPatch) error
	// DeleteRequest removes the request and all its responses in one
	// transaction so no orphaned response can survive.
	DeleteRequest(ctx context.Context, requestID string) error
}
