package repository

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"bloodlink-data/internal/domain"

	"github.com/google/uuid"
)

// profileLocked joins a donor with its account; caller holds the lock.
func (s *MemoryStore) profileLocked(d *domain.Donor) *domain.DonorProfile {
	p := &domain.DonorProfile{Donor: *d}
	if u, ok := s.users[d.UserID]; ok {
		p.FullName = u.FullName
		p.Email = u.Email
		p.Phone = u.Phone
	}
	return p
}

func (s *MemoryStore) GetDonor(ctx context.Context, donorID string) (*domain.DonorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donors[donorID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u, ok := s.users[d.UserID]; !ok || !u.IsActive {
		return nil, domain.ErrNotFound
	}
	return s.profileLocked(d), nil
}

func (s *MemoryStore) GetDonorByUserID(ctx context.Context, userID string) (*domain.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.donors {
		if d.UserID == userID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) ListDonors(ctx context.Context, filters DonorFilters) ([]*domain.DonorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.DonorProfile
	for _, d := range s.donors {
		u, ok := s.users[d.UserID]
		if !ok || !u.IsActive {
			continue
		}
		if filters.BloodType != "" && d.BloodType != filters.BloodType {
			continue
		}
		if !containsFold(d.City, filters.City) {
			continue
		}
		if filters.Available != nil && d.IsAvailable != *filters.Available {
			continue
		}
		out = append(out, s.profileLocked(d))
	}
	sort.Slice(out, func(i, j int) bool {
		return s.newerFirst(out[i].DonorID, out[i].CreatedAt, out[j].DonorID, out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateDonor(ctx context.Context, donor *domain.Donor) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *donor
	copied.DonorID = uuid.NewString()
	copied.CreatedAt = s.clock()
	s.donors[copied.DonorID] = &copied
	s.stamp(copied.DonorID)
	return copied.DonorID, nil
}

func (s *MemoryStore) UpdateDonor(ctx context.Context, donorID string, patch DonorPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donors[donorID]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.BloodType != nil {
		d.BloodType = *patch.BloodType
	}
	if patch.DateOfBirth != nil {
		d.DateOfBirth = parseNullDate(*patch.DateOfBirth)
	}
	if patch.Gender != nil {
		d.Gender = sql.NullString{String: *patch.Gender, Valid: true}
	}
	if patch.Weight != nil {
		d.Weight = sql.NullInt64{Int64: int64(*patch.Weight), Valid: true}
	}
	if patch.City != nil {
		d.City = *patch.City
	}
	if patch.State != nil {
		d.State = sql.NullString{String: *patch.State, Valid: true}
	}
	if patch.Address != nil {
		d.Address = sql.NullString{String: *patch.Address, Valid: true}
	}
	if patch.LastDonationDate != nil {
		d.LastDonationDate = parseNullDate(*patch.LastDonationDate)
	}
	if patch.IsAvailable != nil {
		d.IsAvailable = *patch.IsAvailable
	}
	if patch.MedicalNotes != nil {
		d.MedicalNotes = sql.NullString{String: *patch.MedicalNotes, Valid: true}
	}
	return nil
}

func (s *MemoryStore) DeleteDonor(ctx context.Context, donorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donors[donorID]; !ok {
		return domain.ErrNotFound
	}
	for respID, resp := range s.responses {
		if resp.DonorID == donorID {
			delete(s.responses, respID)
		}
	}
	delete(s.donors, donorID)
	return nil
}

func parseNullDate(v string) sql.NullTime {
	if v == "" {
		return sql.NullTime{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	return sql.NullTime{}
}
