package service

import (
	"context"
	"errors"
	"fmt"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"

	"go.uber.org/zap"
)

// DonorService exposes the donor directory and profile maintenance.
type DonorService interface {
	// ListDonors returns the directory of donors on active accounts,
	// optionally filtered by blood group, city and availability.
	ListDonors(ctx context.Context, filters repository.DonorFilters) ([]DonorProfileDTO, error)
	GetDonor(ctx context.Context, donorID string) (*DonorProfileDTO, error)

	// UpdateDonor applies a partial update. Only the owning donor or an
	// admin may update; others get domain.ErrForbidden.
	UpdateDonor(ctx context.Context, actor *domain.User, donorID string, patch repository.DonorPatch) (*DonorProfileDTO, error)

	// DeleteDonor removes a donor row and its responses. Owner or admin only.
	DeleteDonor(ctx context.Context, actor *domain.User, donorID string) error
}

type donorService struct {
	donors repository.DonorsRepository
	logger *zap.Logger
}

func NewDonorService(donors repository.DonorsRepository, logger *zap.Logger) DonorService {
	return &donorService{donors: donors, logger: logger}
}

// DonorDTO is the JSON shape of a donor row.
type DonorDTO struct {
	DonorID          string           `json:"donor_id"`
	UserID           string           `json:"user_id"`
	BloodType        domain.BloodType `json:"blood_group"`
	IsAvailable      bool             `json:"is_available"`
	DateOfBirth      string           `json:"date_of_birth,omitempty"`
	Gender           string           `json:"gender,omitempty"`
	Weight           int              `json:"weight,omitempty"`
	City             string           `json:"city"`
	State            string           `json:"state,omitempty"`
	Address          string           `json:"address,omitempty"`
	LastDonationDate string           `json:"last_donation_date,omitempty"`
	MedicalNotes     string           `json:"medical_conditions,omitempty"`
	CreatedAt        string           `json:"created_at"`
}

// DonorProfileDTO adds the owning account's identity fields.
type DonorProfileDTO struct {
	DonorDTO
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

func donorToDTO(d *domain.Donor) DonorDTO {
	dto := DonorDTO{
		DonorID:     d.DonorID,
		UserID:      d.UserID,
		BloodType:   d.BloodType,
		IsAvailable: d.IsAvailable,
		City:        d.City,
		CreatedAt:   d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if d.DateOfBirth.Valid {
		dto.DateOfBirth = formatDate(d.DateOfBirth.Time)
	}
	if d.Gender.Valid {
		dto.Gender = d.Gender.String
	}
	if d.Weight.Valid {
		dto.Weight = int(d.Weight.Int64)
	}
	if d.State.Valid {
		dto.State = d.State.String
	}
	if d.Address.Valid {
		dto.Address = d.Address.String
	}
	if d.LastDonationDate.Valid {
		dto.LastDonationDate = formatDate(d.LastDonationDate.Time)
	}
	if d.MedicalNotes.Valid {
		dto.MedicalNotes = d.MedicalNotes.String
	}
	return dto
}

func profileToDTO(p *domain.DonorProfile) DonorProfileDTO {
	dto := DonorProfileDTO{
		DonorDTO: donorToDTO(&p.Donor),
		FullName: p.FullName,
		Email:    p.Email,
	}
	if p.Phone.Valid {
		dto.Phone = p.Phone.String
	}
	return dto
}

func (s *donorService) ListDonors(ctx context.Context, filters repository.DonorFilters) ([]DonorProfileDTO, error) {
	if filters.BloodType != "" && !filters.BloodType.IsValid() {
		return nil, domain.NewValidationError("blood_group")
	}
	profiles, err := s.donors.ListDonors(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	out := make([]DonorProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileToDTO(p))
	}
	return out, nil
}

func (s *donorService) GetDonor(ctx context.Context, donorID string) (*DonorProfileDTO, error) {
	p, err := s.donors.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	dto := profileToDTO(p)
	return &dto, nil
}

func (s *donorService) UpdateDonor(ctx context.Context, actor *domain.User, donorID string, patch repository.DonorPatch) (*DonorProfileDTO, error) {
	if err := s.authorize(ctx, actor, donorID); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, &domain.ValidationError{Message: "no fields to update"}
	}
	if patch.BloodType != nil && !patch.BloodType.IsValid() {
		return nil, domain.NewValidationError("blood_group")
	}
	if patch.DateOfBirth != nil && !validDate(*patch.DateOfBirth) {
		return nil, domain.NewValidationError("date_of_birth")
	}
	if patch.LastDonationDate != nil && !validDate(*patch.LastDonationDate) {
		return nil, domain.NewValidationError("last_donation_date")
	}
	if err := s.donors.UpdateDonor(ctx, donorID, patch); err != nil {
		return nil, err
	}
	s.logger.Info("donor updated",
		zap.String("donor_id", donorID),
		zap.String("actor_id", actor.UserID),
	)
	return s.GetDonor(ctx, donorID)
}

func (s *donorService) DeleteDonor(ctx context.Context, actor *domain.User, donorID string) error {
	if err := s.authorize(ctx, actor, donorID); err != nil {
		return err
	}
	if err := s.donors.DeleteDonor(ctx, donorID); err != nil {
		return err
	}
	s.logger.Info("donor deleted",
		zap.String("donor_id", donorID),
		zap.String("actor_id", actor.UserID),
	)
	return nil
}

// authorize allows admins and the donor's owning account.
func (s *donorService) authorize(ctx context.Context, actor *domain.User, donorID string) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	p, err := s.donors.GetDonor(ctx, donorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to load donor: %w", err)
	}
	if p.UserID != actor.UserID {
		return domain.ErrForbidden
	}
	return nil
}
