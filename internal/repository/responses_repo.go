package repository

import (
	"context"

	"bloodlink-data/internal/domain"
)

// ResponsePatch carries partial response updates. A nil field is left untouched.
type ResponsePatch struct {
	ResponseType      *domain.ResponseType
	Message           *string
	Appointment       *string // RFC 3339 or YYYY-MM-DD
	DonationCompleted *bool
	DonationDate      *string // YYYY-MM-DD
}

// IsEmpty reports whether the patch would change nothing.
func (p ResponsePatch) IsEmpty() bool {
	return p.ResponseType == nil && p.Message == nil && p.Appointment == nil &&
		p.DonationCompleted == nil && p.DonationDate == nil
}

// ResponsesRepository manages donation response rows.
type ResponsesRepository interface {
	// CreateResponse inserts atomically with its gates: inside one
	// transaction it re-checks that the request is still Open (row locked)
	// and relies on the (request_id, donor_id) unique constraint for
	// per-donor uniqueness. Returns domain.ErrInvalidState if the request is
	// not Open and domain.ErrDuplicateResponse on a second response, so two
	// concurrent responses from the same donor can never both succeed.
	CreateResponse(ctx context.Context, resp *domain.DonationResponse) (string, error)

	GetResponse(ctx context.Context, responseID string) (*domain.DonationResponse, error)
	// ListByRequest joins donor identity, newest first.
	ListByRequest(ctx context.Context, requestID string) ([]*domain.ResponseWithDonor, error)
	// ListByDonor joins the referenced request's public fields, newest first.
	ListByDonor(ctx context.Context, donorID string) ([]*domain.ResponseWithRequest, error)
	UpdateResponse(ctx context.Context, responseID string, patch ResponsePatch) error
	DeleteResponse(ctx context.Context, responseID string) error
}
