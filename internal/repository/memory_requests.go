package repository

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"bloodlink-data/internal/domain"

	"github.com/google/uuid"
)

// detailLocked joins a request with its posting account; caller holds the lock.
func (s *MemoryStore) detailLocked(req *domain.BloodRequest) *domain.RequestDetail {
	d := &domain.RequestDetail{BloodRequest: *req}
	if u, ok := s.users[req.HospitalID]; ok {
		d.HospitalContactName = u.FullName
	}
	return d
}

func (s *MemoryStore) GetRequest(ctx context.Context, requestID string) (*domain.RequestDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.detailLocked(req), nil
}

func (s *MemoryStore) ListRequests(ctx context.Context, filters RequestFilters) ([]*domain.RequestDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.RequestDetail
	for _, req := range s.requests {
		if filters.BloodType != "" && req.BloodType != filters.BloodType {
			continue
		}
		if !containsFold(req.City, filters.City) {
			continue
		}
		if filters.Status != "" && req.Status != filters.Status {
			continue
		}
		if filters.Urgency != "" && req.Urgency != filters.Urgency {
			continue
		}
		out = append(out, s.detailLocked(req))
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Urgency.Rank(), out[j].Urgency.Rank()
		if ri != rj {
			return ri > rj
		}
		return s.newerFirst(out[i].RequestID, out[i].CreatedAt, out[j].RequestID, out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateRequest(ctx context.Context, req *domain.BloodRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *req
	copied.RequestID = uuid.NewString()
	copied.CreatedAt = s.clock()
	s.requests[copied.RequestID] = &copied
	s.stamp(copied.RequestID)
	return copied.RequestID, nil
}

func (s *MemoryStore) UpdateRequest(ctx context.Context, requestID string, patch RequestPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.PatientName != nil {
		req.PatientName = *patch.PatientName
	}
	if patch.BloodType != nil {
		req.BloodType = *patch.BloodType
	}
	if patch.UnitsRequired != nil {
		req.UnitsRequired = *patch.UnitsRequired
	}
	if patch.Urgency != nil {
		req.Urgency = *patch.Urgency
	}
	if patch.Status != nil {
		req.Status = *patch.Status
	}
	if patch.HospitalName != nil {
		req.HospitalName = *patch.HospitalName
	}
	if patch.HospitalAddress != nil {
		req.HospitalAddress = *patch.HospitalAddress
	}
	if patch.City != nil {
		req.City = *patch.City
	}
	if patch.State != nil {
		req.State = sql.NullString{String: *patch.State, Valid: true}
	}
	if patch.ContactPerson != nil {
		req.ContactPerson = *patch.ContactPerson
	}
	if patch.ContactPhone != nil {
		req.ContactPhone = *patch.ContactPhone
	}
	if patch.RequiredBy != nil {
		if t, err := time.Parse("2006-01-02", *patch.RequiredBy); err == nil {
			req.RequiredBy = t
		}
	}
	if patch.Description != nil {
		req.Description = sql.NullString{String: *patch.Description, Valid: true}
	}
	return nil
}

// DeleteRequest removes the request and all its responses atomically under
// the store mutex.
func (s *MemoryStore) DeleteRequest(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[requestID]; !ok {
		return domain.ErrNotFound
	}
	for respID, resp := range s.responses {
		if resp.RequestID == requestID {
			delete(s.responses, respID)
		}
	}
	delete(s.requests, requestID)
	return nil
}
