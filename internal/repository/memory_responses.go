package repository

import (
	"context"
	"database/sql"
	"sort"

	"bloodlink-data/internal/domain"

	"github.com/google/uuid"
)

// CreateResponse mirrors the Postgres transaction: the openness check, the
// uniqueness check and the insert all happen under one lock, so two
// concurrent responses from the same donor cannot both succeed.
func (s *MemoryStore) CreateResponse(ctx context.Context, resp *domain.DonationResponse) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[resp.RequestID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if req.Status != domain.StatusOpen {
		return "", domain.ErrInvalidState
	}
	for _, existing := range s.responses {
		if existing.RequestID == resp.RequestID && existing.DonorID == resp.DonorID {
			return "", domain.ErrDuplicateResponse
		}
	}

	copied := *resp
	copied.ResponseID = uuid.NewString()
	copied.CreatedAt = s.clock()
	s.responses[copied.ResponseID] = &copied
	s.stamp(copied.ResponseID)
	return copied.ResponseID, nil
}

func (s *MemoryStore) GetResponse(ctx context.Context, responseID string) (*domain.DonationResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp, ok := s.responses[responseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *resp
	return &copied, nil
}

func (s *MemoryStore) ListByRequest(ctx context.Context, requestID string) ([]*domain.ResponseWithDonor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.ResponseWithDonor
	for _, resp := range s.responses {
		if resp.RequestID != requestID {
			continue
		}
		v := &domain.ResponseWithDonor{DonationResponse: *resp}
		if d, ok := s.donors[resp.DonorID]; ok {
			v.BloodType = d.BloodType
			v.City = d.City
			v.State = d.State
			if u, ok := s.users[d.UserID]; ok {
				v.DonorName = u.FullName
				v.DonorEmail = u.Email
				v.DonorPhone = u.Phone
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.newerFirst(out[i].ResponseID, out[i].CreatedAt, out[j].ResponseID, out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListByDonor(ctx context.Context, donorID string) ([]*domain.ResponseWithRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.ResponseWithRequest
	for _, resp := range s.responses {
		if resp.DonorID != donorID {
			continue
		}
		v := &domain.ResponseWithRequest{DonationResponse: *resp}
		if req, ok := s.requests[resp.RequestID]; ok {
			v.PatientName = req.PatientName
			v.BloodType = req.BloodType
			v.HospitalName = req.HospitalName
			v.City = req.City
			v.ContactPerson = req.ContactPerson
			v.ContactPhone = req.ContactPhone
			v.RequestStatus = req.Status
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.newerFirst(out[i].ResponseID, out[i].CreatedAt, out[j].ResponseID, out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateResponse(ctx context.Context, responseID string, patch ResponsePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.responses[responseID]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.ResponseType != nil {
		resp.ResponseType = *patch.ResponseType
	}
	if patch.Message != nil {
		resp.Message = sql.NullString{String: *patch.Message, Valid: true}
	}
	if patch.Appointment != nil {
		resp.Appointment = parseNullDate(*patch.Appointment)
	}
	if patch.DonationCompleted != nil {
		resp.DonationCompleted = *patch.DonationCompleted
	}
	if patch.DonationDate != nil {
		resp.DonationDate = parseNullDate(*patch.DonationDate)
	}
	return nil
}

func (s *MemoryStore) DeleteResponse(ctx context.Context, responseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responses[responseID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.responses, responseID)
	return nil
}
