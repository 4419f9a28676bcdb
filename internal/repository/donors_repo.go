package repository

import (
	"context"

	"bloodlink-data/internal/domain"
)

// DonorFilters narrows donor directory listings. Zero values mean "no filter".
type DonorFilters struct {
	BloodType domain.BloodType // exact match
	City      string           // substring, case-insensitive
	Available *bool            // nil: any
}

// DonorPatch carries partial donor updates. A nil field is left untouched;
// repositories apply patches with static SQL, never by assembling fragments.
type DonorPatch struct {
	BloodType        *domain.BloodType
	DateOfBirth      *string // YYYY-MM-DD
	Gender           *string
	Weight           *int
	City             *string
	State            *string
	Address          *string
	LastDonationDate *string // YYYY-MM-DD
	IsAvailable      *bool
	MedicalNotes     *string
}

// IsEmpty reports whether the patch would change nothing.
func (p DonorPatch) IsEmpty() bool {
	return p.BloodType == nil && p.DateOfBirth == nil && p.Gender == nil &&
		p.Weight == nil && p.City == nil && p.State == nil && p.Address == nil &&
		p.LastDonationDate == nil && p.IsAvailable == nil && p.MedicalNotes == nil
}

// DonorsRepository manages donor rows.
type DonorsRepository interface {
	GetDonor(ctx context.Context, donorID string) (*domain.DonorProfile, error)
	// GetDonorByUserID resolves the one donor owned by an account.
	GetDonorByUserID(ctx context.Context, userID string) (*domain.Donor, error)
	// ListDonors returns donors of active accounts only, newest first.
	ListDonors(ctx context.Context, filters DonorFilters) ([]*domain.DonorProfile, error)
	CreateDonor(ctx context.Context, donor *domain.Donor) (string, error)
	UpdateDonor(ctx context.Context, donorID string, patch DonorPatch) error
	// DeleteDonor removes the donor and its responses in one transaction.
	DeleteDonor(ctx context.Context, donorID string) error
}
